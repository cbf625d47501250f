// ABOUTME: Embedded seed dataset for new installs, demo mode, and tests
// ABOUTME: Parses the YAML document into the models used everywhere else
package fixtures

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/dofo/models"
)

//go:embed data.yaml
var seedYAML []byte

// ReferenceTime is the "today" the seed data was written against.
var ReferenceTime = time.Date(2024, 9, 26, 12, 0, 0, 0, time.UTC)

// Dataset is every seed collection in one document.
type Dataset struct {
	People    []models.Person         `yaml:"people"`
	Actions   []models.DailyAction    `yaml:"actions"`
	Inbox     []models.InboxItem      `yaml:"inbox"`
	Circles   []models.Circle         `yaml:"circles"`
	Tags      []models.Tag            `yaml:"tags"`
	Advice    []models.AdviceResponse `yaml:"advice"`
	Questions []models.DailyQuestion  `yaml:"questions"`
}

// Load parses the embedded seed document. Each call returns a fresh copy.
func Load() (*Dataset, error) {
	return Parse(seedYAML)
}

// Parse decodes a dataset document.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return &ds, nil
}

// MustLoad is Load for tests and package-level defaults.
func MustLoad() *Dataset {
	ds, err := Load()
	if err != nil {
		panic(err)
	}
	return ds
}

// Person looks up a seed person by id.
func (d *Dataset) Person(id string) (*models.Person, bool) {
	for i := range d.People {
		if d.People[i].ID == id {
			return &d.People[i], true
		}
	}
	return nil, false
}

// ActionsByPerson returns the daily actions for one person.
func (d *Dataset) ActionsByPerson(personID string) []models.DailyAction {
	var out []models.DailyAction
	for _, a := range d.Actions {
		if a.PersonID == personID {
			out = append(out, a)
		}
	}
	return out
}

// ABOUTME: People list helpers: relation filter, sort orders, and circle statistics
// ABOUTME: Overdue and upcoming counts are computed through urgency, not stored flags
package people

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/urgency"
)

// FilterAll disables relation filtering.
const FilterAll = "all"

// Sort orders.
const (
	SortName        = "name"
	SortLastContact = "lastContact"
	SortHealth      = "healthScore"
)

// ParseSort validates a sort order name. Empty means health score.
func ParseSort(s string) (string, error) {
	switch strings.TrimSpace(s) {
	case "", SortHealth, "health":
		return SortHealth, nil
	case SortName:
		return SortName, nil
	case SortLastContact, "last-contact", "last_contact":
		return SortLastContact, nil
	}
	return "", fmt.Errorf("unknown sort order %q (want name, lastContact, or healthScore)", s)
}

// Filter returns the people with the given relation, or a copy of all of them
// for FilterAll or an empty relation.
func Filter(list []models.Person, relation string) []models.Person {
	out := make([]models.Person, 0, len(list))
	for _, p := range list {
		if relation == "" || relation == FilterAll || p.Relation == relation {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders list in place. Unknown orders fall back to health score.
func Sort(list []models.Person, by string) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch by {
		case SortName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case SortLastContact:
			switch {
			case a.LastContact == nil:
				return false
			case b.LastContact == nil:
				return true
			}
			return a.LastContact.After(*b.LastContact)
		default:
			return a.HealthScore > b.HealthScore
		}
	})
}

// Summary is the header block of the people screen.
type Summary struct {
	Total              int            `json:"total"`
	ByRelation         map[string]int `json:"by_relation"`
	AverageHealth      float64        `json:"average_health"`
	Overdue            int            `json:"overdue"`
	UpcomingMilestones int            `json:"upcoming_milestones"`
}

// Stats summarises list as of now. Milestones count when they fall within the policy window.
func Stats(list []models.Person, now time.Time, policy urgency.Policy) Summary {
	s := Summary{
		Total:      len(list),
		ByRelation: make(map[string]int, len(models.Relations)),
	}
	for _, rel := range models.Relations {
		s.ByRelation[rel] = 0
	}

	var health int
	for i := range list {
		p := &list[i]
		s.ByRelation[p.Relation]++
		health += p.HealthScore

		st := urgency.Evaluate(p, now, policy)
		if st.Overdue {
			s.Overdue++
		}
		if st.MilestoneSoon {
			s.UpcomingMilestones++
		}
	}
	if s.Total > 0 {
		s.AverageHealth = float64(health) / float64(s.Total)
	}
	return s
}

// ABOUTME: Person deduplication for imports
// ABOUTME: Matches incoming contacts to existing people by normalized email
package connect

import (
	"strings"

	"github.com/harperreed/dofo/models"
)

type PersonMatcher struct {
	byEmail map[string]*models.Person
}

// NewPersonMatcher creates a matcher from existing people.
func NewPersonMatcher(list []models.Person) *PersonMatcher {
	m := &PersonMatcher{byEmail: make(map[string]*models.Person, len(list))}
	for i := range list {
		m.Add(&list[i])
	}
	return m
}

// FindMatch looks for an existing person by email.
func (m *PersonMatcher) FindMatch(email string) (*models.Person, bool) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return nil, false
	}
	p, ok := m.byEmail[normalized]
	return p, ok
}

// Add registers p so later contacts in the same import match it.
func (m *PersonMatcher) Add(p *models.Person) {
	if email := normalizeEmail(p.Email); email != "" {
		m.byEmail[email] = p
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

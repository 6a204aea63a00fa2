// ABOUTME: Contact deduplication for directory imports
// ABOUTME: Matches incoming people to existing contacts by normalized email
package sync

import (
	"strings"

	"github.com/harperreed/dealdesk/models"
)

type ContactMatcher struct {
	byEmail map[string]models.ContactPerson
}

// NewContactMatcher indexes existing contacts by email.
func NewContactMatcher(contacts []models.ContactPerson) *ContactMatcher {
	m := &ContactMatcher{byEmail: make(map[string]models.ContactPerson)}
	for _, c := range contacts {
		m.Add(c)
	}
	return m
}

// FindMatch looks for an existing contact with the same email.
func (m *ContactMatcher) FindMatch(email string) (models.ContactPerson, bool) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return models.ContactPerson{}, false
	}
	c, found := m.byEmail[normalized]
	return c, found
}

// Add records a contact so later people in the same import match it.
func (m *ContactMatcher) Add(c models.ContactPerson) {
	if email := normalizeEmail(c.Email); email != "" {
		m.byEmail[email] = c
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

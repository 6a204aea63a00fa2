// ABOUTME: Tests for deep copies of entities and timeline details
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFollowUpCloneSharesNothing(t *testing.T) {
	done := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	original := done.Add(-time.Hour)
	f := FollowUp{
		FollowUpUUID:          "f1",
		ContactPersons:        []ContactPerson{{ContactPersonUUID: "c1", Name: "Dana"}},
		CompletedDate:         &done,
		OriginalScheduledDate: &original,
	}

	c := f.Clone()
	c.ContactPersons[0].Name = "changed"
	*c.CompletedDate = time.Time{}
	*c.OriginalScheduledDate = time.Time{}

	assert.Equal(t, "Dana", f.ContactPersons[0].Name)
	assert.False(t, f.CompletedDate.IsZero())
	assert.False(t, f.OriginalScheduledDate.IsZero())
	assert.Nil(t, FollowUp{}.Clone().CompletedDate)
}

func TestDetailsCloneCopiesPrevious(t *testing.T) {
	prev := Email{EmailUUID: "e1", To: []string{"a@acme.test"}}
	ev := TimelineEvent{Details: EmailDetails{Action: ActionUpdated, Email: Email{EmailUUID: "e1", To: []string{"b@acme.test"}}, Previous: &prev}}

	c := ev.Clone()
	det := c.Details.(EmailDetails)
	det.Previous.To[0] = "changed"
	det.Email.To[0] = "changed"

	orig := ev.Details.(EmailDetails)
	assert.Equal(t, []string{"a@acme.test"}, orig.Previous.To)
	assert.Equal(t, []string{"b@acme.test"}, orig.Email.To)
	assert.Nil(t, CloneAll[Email](nil))
}

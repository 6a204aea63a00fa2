// ABOUTME: Tests for the timeline recorder
package deal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealdesk/models"
)

func noteEvent(content string) models.TimelineEvent {
	return models.TimelineEvent{
		Title:   "Note added",
		Details: models.NoteDetails{Action: models.ActionAdded, Note: models.Note{NoteUUID: content, Content: content}},
	}
}

func TestTimelineRecordLeavesReceiverUntouched(t *testing.T) {
	var empty Timeline

	one, first := empty.Record(noteEvent("a"))
	two, second := one.Record(noteEvent("b"))

	assert.Zero(t, empty.Len())
	assert.Equal(t, 1, one.Len())
	assert.Equal(t, 2, two.Len())

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, models.EventNote, second.Type)

	events := two.Events()
	assert.Equal(t, 2, events[0].ID)
	assert.Equal(t, 1, events[1].ID)
	assert.Equal(t, one.Events()[0], events[1])

	latest, ok := two.Latest()
	require.True(t, ok)
	assert.Equal(t, second, latest)

	_, ok = empty.Latest()
	assert.False(t, ok)
}

func TestTimelineTypeComesFromDetails(t *testing.T) {
	ev := noteEvent("a")
	ev.Type = models.EventProduct

	_, recorded := Timeline{}.Record(ev)
	assert.Equal(t, models.EventNote, recorded.Type)
}

func TestTimelineEventsReturnsCopy(t *testing.T) {
	tl, _ := Timeline{}.Record(noteEvent("a"))
	events := tl.Events()
	events[0].Title = "changed"

	latest, _ := tl.Latest()
	assert.Equal(t, "Note added", latest.Title)
}

func TestNewTimelineChecksSequence(t *testing.T) {
	tl, _ := Timeline{}.Record(noteEvent("a"))
	tl, _ = tl.Record(noteEvent("b"))

	restored, err := NewTimeline(tl.Events())
	require.NoError(t, err)
	assert.Equal(t, tl.Events(), restored.Events())

	events := tl.Events()
	events[0], events[1] = events[1], events[0]
	_, err = NewTimeline(events)
	assert.Error(t, err)

	_, err = NewTimeline(tl.Events()[:1])
	assert.Error(t, err, "event 1 is missing")

	noDetails := tl.Events()
	noDetails[1].Details = nil
	_, err = NewTimeline(noDetails)
	assert.Error(t, err)
}

func TestRecordedDetailsAreNotShared(t *testing.T) {
	to := []string{"cfo@acme.test"}
	ev := models.TimelineEvent{
		Title:   "Email added",
		Details: models.EmailDetails{Action: models.ActionAdded, Email: models.Email{EmailUUID: "e1", Subject: "Quote", To: to}},
	}

	tl, recorded := Timeline{}.Record(ev)
	to[0] = "changed"
	recorded.Details.(models.EmailDetails).Email.To[0] = "changed"
	tl.Events()[0].Details.(models.EmailDetails).Email.To[0] = "changed"
	first, _ := tl.Latest()
	first.Details.(models.EmailDetails).Email.To[0] = "changed"

	det := tl.Events()[0].Details.(models.EmailDetails)
	assert.Equal(t, []string{"cfo@acme.test"}, det.Email.To)
}

func TestNewTimelineCopiesStoredEvents(t *testing.T) {
	started := base
	stored := []models.TimelineEvent{{
		ID:      1,
		Type:    models.EventFollowUp,
		Title:   "Follow-up completed",
		Details: models.FollowUpDetails{Action: models.ActionAdded, FollowUp: models.FollowUp{FollowUpUUID: "f1", CompletedDate: &started}},
	}}

	tl, err := NewTimeline(stored)
	require.NoError(t, err)
	started = time.Time{}

	det := tl.Events()[0].Details.(models.FollowUpDetails)
	assert.Equal(t, base, *det.FollowUp.CompletedDate)
}

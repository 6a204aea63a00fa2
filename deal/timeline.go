// ABOUTME: Append-only timeline recorder for deal audit events
// ABOUTME: Assigns sequence ids and keeps entries newest first
package deal

import (
	"fmt"

	"github.com/harperreed/dealdesk/models"
)

// Timeline is an immutable, newest-first sequence of events.
// Record returns a new Timeline and never touches the receiver.
type Timeline struct {
	events []models.TimelineEvent
}

// NewTimeline wraps events stored newest first. Ids must run n..1 without gaps.
func NewTimeline(events []models.TimelineEvent) (Timeline, error) {
	n := len(events)
	for i, ev := range events {
		if ev.ID != n-i {
			return Timeline{}, fmt.Errorf("timeline out of sequence at position %d: id %d, want %d", i, ev.ID, n-i)
		}
		if ev.Details == nil {
			return Timeline{}, fmt.Errorf("timeline event %d has no details", ev.ID)
		}
	}
	return Timeline{events: cloneEvents(events)}, nil
}

func (t Timeline) Len() int {
	return len(t.events)
}

// Events returns a deep copy of the entries, newest first.
func (t Timeline) Events() []models.TimelineEvent {
	return cloneEvents(t.events)
}

func cloneEvents(events []models.TimelineEvent) []models.TimelineEvent {
	if events == nil {
		return nil
	}
	out := make([]models.TimelineEvent, len(events))
	for i, ev := range events {
		out[i] = ev.Clone()
	}
	return out
}

// Latest returns the most recent entry.
func (t Timeline) Latest() (models.TimelineEvent, bool) {
	if len(t.events) == 0 {
		return models.TimelineEvent{}, false
	}
	return t.events[0].Clone(), true
}

// Record assigns the next id, takes the type from the details variant and prepends the entry.
// The stored entry is a copy of ev.
func (t Timeline) Record(ev models.TimelineEvent) (Timeline, models.TimelineEvent) {
	ev = ev.Clone()
	ev.ID = len(t.events) + 1
	if ev.Details != nil {
		ev.Type = ev.Details.EventType()
	}

	next := make([]models.TimelineEvent, len(t.events)+1)
	next[0] = ev
	copy(next[1:], t.events)

	return Timeline{events: next}, ev.Clone()
}

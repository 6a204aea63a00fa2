// ABOUTME: Note operations on a deal
package deal

import (
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/dealdesk/models"
)

var notes = collection[models.Note]{
	kind: models.EventNote,
	key:  func(n models.Note) string { return n.NoteUUID },
	slot: func(s *State) *[]models.Note { return &s.Notes },
	event: func(action models.Action, n models.Note, previous *models.Note) models.TimelineEvent {
		return models.TimelineEvent{
			Title:       "Note " + string(action),
			Description: excerpt(n.Content, 80),
			Color:       actionColor(action),
			Details:     models.NoteDetails{Action: action, Note: n, Previous: previous},
		}
	},
}

func validateNote(n models.Note) error {
	if strings.TrimSpace(n.Content) == "" {
		return invalid("content", "is required")
	}
	return nil
}

func (d *Deal) AddNote(n models.Note) (Outcome, error) {
	if n.NoteUUID == "" {
		n.NoteUUID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}
	if err := validateNote(n); err != nil {
		return OutcomeRejected, d.reject("add note", err)
	}
	return addTo(d, notes, n), nil
}

func (d *Deal) UpdateNote(id string, patch models.NotePatch) (Outcome, error) {
	return updateIn(d, notes, id, patch, validateNote)
}

func (d *Deal) RemoveNote(id string) Outcome {
	_, outcome := removeFrom(d, notes, id, nil)
	return outcome
}

func (d *Deal) Notes() []models.Note {
	return list(d, notes)
}

func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

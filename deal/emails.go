// ABOUTME: Email log operations on a deal
// ABOUTME: Tracks sent and received emails attached to the deal
package deal

import (
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/dealdesk/models"
)

var emails = collection[models.Email]{
	kind: models.EventEmail,
	key:  func(e models.Email) string { return e.EmailUUID },
	slot: func(s *State) *[]models.Email { return &s.Emails },
	event: func(action models.Action, e models.Email, previous *models.Email) models.TimelineEvent {
		return models.TimelineEvent{
			Title:       "Email " + string(action),
			Description: e.Subject,
			Color:       actionColor(action),
			Details:     models.EmailDetails{Action: action, Email: e, Previous: previous},
		}
	},
}

func validateEmail(e models.Email) error {
	if strings.TrimSpace(e.Subject) == "" {
		return invalid("subject", "is required")
	}
	if len(e.To) == 0 {
		return invalid("to", "needs at least one recipient")
	}
	return nil
}

func (d *Deal) LogEmail(e models.Email) (Outcome, error) {
	if e.EmailUUID == "" {
		e.EmailUUID = uuid.NewString()
	}
	if e.Direction == "" {
		e.Direction = models.DirectionOutbound
	}
	if e.SentAt.IsZero() {
		e.SentAt = d.now()
	}
	if err := validateEmail(e); err != nil {
		return OutcomeRejected, d.reject("log email", err)
	}
	return addTo(d, emails, e), nil
}

func (d *Deal) UpdateEmail(id string, patch models.EmailPatch) (Outcome, error) {
	return updateIn(d, emails, id, patch, validateEmail)
}

func (d *Deal) RemoveEmail(id string) Outcome {
	_, outcome := removeFrom(d, emails, id, nil)
	return outcome
}

func (d *Deal) Emails() []models.Email {
	return list(d, emails)
}

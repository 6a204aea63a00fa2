// ABOUTME: Call log operations on a deal
// ABOUTME: Logged calls record direction, duration, and outcome
package deal

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/dealdesk/models"
)

var calls = collection[models.Call]{
	kind: models.EventCall,
	key:  func(c models.Call) string { return c.CallUUID },
	slot: func(s *State) *[]models.Call { return &s.Calls },
	event: func(action models.Action, c models.Call, previous *models.Call) models.TimelineEvent {
		desc := c.Subject
		if c.ContactPerson != nil {
			desc = fmt.Sprintf("%s (%s, %s)", c.Subject, c.Direction, c.ContactPerson.Name)
		}
		return models.TimelineEvent{
			Title:       "Call " + string(action),
			Description: desc,
			Color:       actionColor(action),
			Details:     models.CallDetails{Action: action, Call: c, Previous: previous},
		}
	},
}

func validateCall(c models.Call) error {
	if strings.TrimSpace(c.Subject) == "" {
		return invalid("subject", "is required")
	}
	if c.Direction != models.DirectionInbound && c.Direction != models.DirectionOutbound {
		return invalid("direction", "must be inbound or outbound")
	}
	if c.Duration < 0 {
		return invalid("duration", "must not be negative")
	}
	return nil
}

func (d *Deal) LogCall(c models.Call) (Outcome, error) {
	if c.CallUUID == "" {
		c.CallUUID = uuid.NewString()
	}
	if c.Direction == "" {
		c.Direction = models.DirectionOutbound
	}
	if c.CalledAt.IsZero() {
		c.CalledAt = d.now()
	}
	if err := validateCall(c); err != nil {
		return OutcomeRejected, d.reject("log call", err)
	}
	return addTo(d, calls, c), nil
}

func (d *Deal) UpdateCall(id string, patch models.CallPatch) (Outcome, error) {
	return updateIn(d, calls, id, patch, validateCall)
}

func (d *Deal) RemoveCall(id string) Outcome {
	_, outcome := removeFrom(d, calls, id, nil)
	return outcome
}

func (d *Deal) Calls() []models.Call {
	return list(d, calls)
}

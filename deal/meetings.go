// ABOUTME: Meeting collection operations on a deal
// ABOUTME: Meetings are scheduled with contact persons from the directory
package deal

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/dealdesk/models"
)

var meetings = collection[models.Meeting]{
	kind: models.EventMeeting,
	key:  func(m models.Meeting) string { return m.MeetingUUID },
	slot: func(s *State) *[]models.Meeting { return &s.Meetings },
	event: func(action models.Action, m models.Meeting, previous *models.Meeting) models.TimelineEvent {
		return models.TimelineEvent{
			Title:       "Meeting " + string(action),
			Description: fmt.Sprintf("%s on %s", m.Title, m.StartTime.Format("2006-01-02 15:04")),
			Color:       actionColor(action),
			Details:     models.MeetingDetails{Action: action, Meeting: m, Previous: previous},
		}
	},
}

func validateMeeting(m models.Meeting) error {
	if strings.TrimSpace(m.Title) == "" {
		return invalid("title", "is required")
	}
	if m.StartTime.IsZero() {
		return invalid("startTime", "is required")
	}
	if !m.EndTime.IsZero() && m.EndTime.Before(m.StartTime) {
		return invalid("endTime", "must not be before start time")
	}
	return nil
}

func (d *Deal) AddMeeting(m models.Meeting) (Outcome, error) {
	if m.MeetingUUID == "" {
		m.MeetingUUID = uuid.NewString()
	}
	if err := validateMeeting(m); err != nil {
		return OutcomeRejected, d.reject("add meeting", err)
	}
	return addTo(d, meetings, m), nil
}

func (d *Deal) UpdateMeeting(id string, patch models.MeetingPatch) (Outcome, error) {
	return updateIn(d, meetings, id, patch, validateMeeting)
}

func (d *Deal) RemoveMeeting(id string) Outcome {
	_, outcome := removeFrom(d, meetings, id, nil)
	return outcome
}

func (d *Deal) Meetings() []models.Meeting {
	return list(d, meetings)
}

func (d *Deal) Meeting(id string) (models.Meeting, bool) {
	return lookup(d, meetings, id)
}

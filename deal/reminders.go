// ABOUTME: Reminder operations on a deal
// ABOUTME: Completing a reminder is an update that flips Done
package deal

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dealdesk/models"
)

var reminders = collection[models.Reminder]{
	kind: models.EventReminder,
	key:  func(r models.Reminder) string { return r.ReminderUUID },
	slot: func(s *State) *[]models.Reminder { return &s.Reminders },
	event: func(action models.Action, r models.Reminder, previous *models.Reminder) models.TimelineEvent {
		color := actionColor(action)
		if action == models.ActionUpdated && r.Done && (previous == nil || !previous.Done) {
			color = models.ColorSuccess
		}
		return models.TimelineEvent{
			Title:       "Reminder " + string(action),
			Description: r.Title + " at " + r.RemindAt.Format("2006-01-02 15:04"),
			Color:       color,
			Details:     models.ReminderDetails{Action: action, Reminder: r, Previous: previous},
		}
	},
}

func validateReminder(r models.Reminder) error {
	if strings.TrimSpace(r.Title) == "" {
		return invalid("title", "is required")
	}
	if r.RemindAt.IsZero() {
		return invalid("remindAt", "is required")
	}
	return nil
}

func (d *Deal) AddReminder(r models.Reminder) (Outcome, error) {
	if r.ReminderUUID == "" {
		r.ReminderUUID = uuid.NewString()
	}
	if err := validateReminder(r); err != nil {
		return OutcomeRejected, d.reject("add reminder", err)
	}
	return addTo(d, reminders, r), nil
}

func (d *Deal) UpdateReminder(id string, patch models.ReminderPatch) (Outcome, error) {
	return updateIn(d, reminders, id, patch, validateReminder)
}

// CompleteReminder marks a reminder done.
func (d *Deal) CompleteReminder(id string) (Outcome, error) {
	done := true
	return d.UpdateReminder(id, models.ReminderPatch{Done: &done})
}

func (d *Deal) RemoveReminder(id string) Outcome {
	_, outcome := removeFrom(d, reminders, id, nil)
	return outcome
}

func (d *Deal) Reminders() []models.Reminder {
	return list(d, reminders)
}

// DueReminders returns open reminders due at or before now.
func (d *Deal) DueReminders(now time.Time) []models.Reminder {
	var due []models.Reminder
	for _, r := range d.Reminders() {
		if !r.Done && !r.RemindAt.After(now) {
			due = append(due, r)
		}
	}
	return due
}

func actionColor(action models.Action) models.Color {
	switch action {
	case models.ActionAdded:
		return models.ColorInfo
	case models.ActionCompleted:
		return models.ColorSuccess
	case models.ActionRemoved, models.ActionCancelled:
		return models.ColorFailure
	case models.ActionRescheduled:
		return models.ColorWarning
	}
	return models.ColorNeutral
}

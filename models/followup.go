// ABOUTME: Follow-up entity and its status values
// ABOUTME: Overdue is derived from the scheduled date at read time, never stored
package models

import "time"

// FollowUpStatus is the lifecycle state of a follow-up.
type FollowUpStatus string

const (
	FollowUpScheduled   FollowUpStatus = "scheduled"
	FollowUpRescheduled FollowUpStatus = "rescheduled"
	FollowUpOverdue     FollowUpStatus = "overdue"
	FollowUpCompleted   FollowUpStatus = "completed"
	FollowUpCancelled   FollowUpStatus = "cancelled"
)

type FollowUp struct {
	FollowUpUUID   string          `json:"follow_up_uuid"`
	Subject        string          `json:"subject"`
	ScheduledDate  time.Time       `json:"scheduled_date"`
	ContactPersons []ContactPerson `json:"contact_persons,omitempty"`
	Description    string          `json:"description,omitempty"`
	Status         FollowUpStatus  `json:"status"`

	CompletedDate *time.Time `json:"completed_date,omitempty"`
	Outcome       string     `json:"outcome,omitempty"`

	CancellationReason string `json:"cancellation_reason,omitempty"`

	NextFollowUpNotes     string     `json:"next_follow_up_notes,omitempty"`
	OriginalScheduledDate *time.Time `json:"original_scheduled_date,omitempty"`
	RescheduleCount       int        `json:"reschedule_count,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// IsOpen reports whether the follow-up still awaits an outcome.
func (f FollowUp) IsOpen() bool {
	return f.Status == FollowUpScheduled || f.Status == FollowUpRescheduled
}

// EffectiveStatus returns the status to present at now.
// Open follow-ups whose scheduled date has passed show as overdue.
func (f FollowUp) EffectiveStatus(now time.Time) FollowUpStatus {
	if f.IsOpen() && f.ScheduledDate.Before(now) {
		return FollowUpOverdue
	}
	return f.Status
}

// CanPerformActions reports whether complete/cancel/reschedule should be offered.
func (f FollowUp) CanPerformActions() bool {
	return f.Status != FollowUpCompleted && f.Status != FollowUpCancelled
}

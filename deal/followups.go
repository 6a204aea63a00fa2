// ABOUTME: Follow-up lifecycle on a deal: schedule, edit, complete, cancel, reschedule, delete
// ABOUTME: Changes are confirmed by the FollowUpService before they reach local state
package deal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dealdesk/models"
)

var followUps = collection[models.FollowUp]{
	kind: models.EventFollowUp,
	key:  func(f models.FollowUp) string { return f.FollowUpUUID },
	slot: func(s *State) *[]models.FollowUp { return &s.FollowUps },
	event: func(action models.Action, f models.FollowUp, previous *models.FollowUp) models.TimelineEvent {
		desc := f.Subject
		switch action {
		case models.ActionCompleted:
			desc = f.Subject + ": " + f.Outcome
		case models.ActionCancelled:
			desc = f.Subject + ": " + f.CancellationReason
		case models.ActionRescheduled:
			desc = fmt.Sprintf("%s moved to %s", f.Subject, f.ScheduledDate.Format("2006-01-02 15:04"))
		}
		return models.TimelineEvent{
			Title:       "Follow-up " + string(action),
			Description: desc,
			Color:       actionColor(action),
			Details:     models.FollowUpDetails{Action: action, FollowUp: f, Previous: previous},
		}
	},
}

func validateFollowUp(f models.FollowUp) error {
	if strings.TrimSpace(f.Subject) == "" {
		return invalid("subject", "is required")
	}
	if f.ScheduledDate.IsZero() {
		return invalid("scheduledDate", "is required")
	}
	return nil
}

// completeFollowUp, cancelFollowUp and rescheduleFollowUp compute the next
// value of a follow-up without touching the deal.

func completeFollowUp(f models.FollowUp, outcome string, now time.Time) (models.FollowUp, error) {
	if strings.TrimSpace(outcome) == "" {
		return f, invalid("outcome", "is required")
	}
	f.Status = models.FollowUpCompleted
	f.Outcome = outcome
	f.CompletedDate = &now
	f.UpdatedAt = now
	return f, nil
}

func cancelFollowUp(f models.FollowUp, reason string, now time.Time) (models.FollowUp, error) {
	if strings.TrimSpace(reason) == "" {
		return f, invalid("cancellationReason", "is required")
	}
	f.Status = models.FollowUpCancelled
	f.CancellationReason = reason
	f.UpdatedAt = now
	return f, nil
}

func rescheduleFollowUp(f models.FollowUp, newDate time.Time, notes string, now time.Time) (models.FollowUp, error) {
	if !newDate.After(now) {
		return f, invalid("scheduledDate", "must be in the future")
	}
	if strings.TrimSpace(notes) == "" {
		return f, invalid("nextFollowUpNotes", "is required")
	}
	if f.OriginalScheduledDate == nil {
		original := f.ScheduledDate
		f.OriginalScheduledDate = &original
	}
	f.ScheduledDate = newDate
	f.NextFollowUpNotes = notes
	f.RescheduleCount++
	f.Status = models.FollowUpRescheduled
	f.UpdatedAt = now
	return f, nil
}

type confirmFunc func(ctx context.Context, dealID string, f models.FollowUp) (models.FollowUp, error)

// changeFollowUp runs one lifecycle step: compute, confirm with the service, then commit.
// The lock is held across the service call so the confirmed value lands on the state it was computed from.
func (d *Deal) changeFollowUp(ctx context.Context, id string, action models.Action, step func(models.FollowUp) (models.FollowUp, error), confirm confirmFunc) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.state
	items := followUps.slot(&next)
	i := followUps.index(*items, id)
	if i < 0 {
		return OutcomeNotFound, nil
	}

	before := (*items)[i]
	after, err := step(before.Clone())
	if err != nil {
		return OutcomeRejected, d.reject(string(action)+" follow-up", err)
	}

	confirmed, err := confirm(ctx, d.id, after)
	if err != nil {
		d.logger.Warn("follow-up change not confirmed", "action", action, "follow_up_id", id, "err", err)
		return OutcomeRejected, fmt.Errorf("failed to %s follow-up: %w", verb(action), err)
	}
	confirmed = confirmed.Clone()
	confirmed.FollowUpUUID = id

	*items = followUps.replaced(*items, i, confirmed)
	d.commit(next, followUps.event(action, confirmed, &before))
	return OutcomeApplied, nil
}

func verb(action models.Action) string {
	switch action {
	case models.ActionCompleted:
		return "complete"
	case models.ActionCancelled:
		return "cancel"
	case models.ActionRescheduled:
		return "reschedule"
	case models.ActionAdded:
		return "create"
	case models.ActionRemoved:
		return "delete"
	}
	return "update"
}

// AddFollowUp schedules a new follow-up. Status always starts at scheduled.
func (d *Deal) AddFollowUp(ctx context.Context, f models.FollowUp) (models.FollowUp, Outcome, error) {
	f = f.Clone()
	if f.FollowUpUUID == "" {
		f.FollowUpUUID = uuid.NewString()
	}
	f.Status = models.FollowUpScheduled
	f.CompletedDate = nil
	f.Outcome = ""
	f.CancellationReason = ""
	f.OriginalScheduledDate = nil
	f.RescheduleCount = 0
	f.UpdatedAt = d.now()
	if err := validateFollowUp(f); err != nil {
		return models.FollowUp{}, OutcomeRejected, d.reject("add follow-up", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.state
	items := followUps.slot(&next)
	if followUps.index(*items, f.FollowUpUUID) >= 0 {
		return models.FollowUp{}, OutcomeDuplicate, nil
	}

	confirmed, err := d.followUps.CreateFollowUp(ctx, d.id, f)
	if err != nil {
		d.logger.Warn("follow-up not created", "follow_up_id", f.FollowUpUUID, "err", err)
		return models.FollowUp{}, OutcomeRejected, fmt.Errorf("failed to create follow-up: %w", err)
	}
	confirmed = confirmed.Clone()
	if confirmed.FollowUpUUID == "" {
		confirmed.FollowUpUUID = f.FollowUpUUID
	}
	if followUps.index(*items, confirmed.FollowUpUUID) >= 0 {
		return models.FollowUp{}, OutcomeDuplicate, nil
	}

	*items = followUps.appended(*items, confirmed)
	d.commit(next, followUps.event(models.ActionAdded, confirmed, nil))
	return confirmed.Clone(), OutcomeApplied, nil
}

// UpdateFollowUp edits subject, description or contact persons.
func (d *Deal) UpdateFollowUp(ctx context.Context, id string, patch models.FollowUpPatch) (Outcome, error) {
	now := d.now()
	return d.changeFollowUp(ctx, id, models.ActionUpdated, func(f models.FollowUp) (models.FollowUp, error) {
		f = patch.Apply(f)
		f.UpdatedAt = now
		return f, validateFollowUp(f)
	}, d.followUps.UpdateFollowUp)
}

func (d *Deal) CompleteFollowUp(ctx context.Context, id, outcome string) (Outcome, error) {
	now := d.now()
	return d.changeFollowUp(ctx, id, models.ActionCompleted, func(f models.FollowUp) (models.FollowUp, error) {
		return completeFollowUp(f, outcome, now)
	}, d.followUps.CompleteFollowUp)
}

func (d *Deal) CancelFollowUp(ctx context.Context, id, reason string) (Outcome, error) {
	now := d.now()
	return d.changeFollowUp(ctx, id, models.ActionCancelled, func(f models.FollowUp) (models.FollowUp, error) {
		return cancelFollowUp(f, reason, now)
	}, d.followUps.CancelFollowUp)
}

// RescheduleFollowUp moves a follow-up to newDate, which must be after now.
// The first reschedule keeps the original date.
func (d *Deal) RescheduleFollowUp(ctx context.Context, id string, newDate time.Time, notes string) (Outcome, error) {
	now := d.now()
	return d.changeFollowUp(ctx, id, models.ActionRescheduled, func(f models.FollowUp) (models.FollowUp, error) {
		return rescheduleFollowUp(f, newDate, notes, now)
	}, d.followUps.RescheduleFollowUp)
}

// DeleteFollowUp removes a follow-up regardless of its status.
func (d *Deal) DeleteFollowUp(ctx context.Context, id string) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.state
	items := followUps.slot(&next)
	i := followUps.index(*items, id)
	if i < 0 {
		return OutcomeNotFound, nil
	}

	if err := d.followUps.DeleteFollowUp(ctx, d.id, id); err != nil {
		d.logger.Warn("follow-up not deleted", "follow_up_id", id, "err", err)
		return OutcomeRejected, fmt.Errorf("failed to delete follow-up: %w", err)
	}

	gone := (*items)[i]
	*items = followUps.removed(*items, i)
	d.commit(next, followUps.event(models.ActionRemoved, gone, nil))
	return OutcomeApplied, nil
}

func (d *Deal) FollowUps() []models.FollowUp {
	return list(d, followUps)
}

func (d *Deal) FollowUp(id string) (models.FollowUp, bool) {
	return lookup(d, followUps, id)
}

// OverdueFollowUps returns open follow-ups whose scheduled date has passed.
func (d *Deal) OverdueFollowUps() []models.FollowUp {
	now := d.now()
	var overdue []models.FollowUp
	for _, f := range d.FollowUps() {
		if f.EffectiveStatus(now) == models.FollowUpOverdue {
			overdue = append(overdue, f)
		}
	}
	return overdue
}

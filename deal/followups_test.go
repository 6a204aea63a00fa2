// ABOUTME: Tests for the follow-up lifecycle
// ABOUTME: Confirm-then-apply, reschedule history, and status transitions
package deal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealdesk/models"
)

func newFollowUpDeal(t *testing.T) (*Deal, *fakeClock, *stubFollowUps) {
	t.Helper()
	clock := &fakeClock{t: base}
	svc := &stubFollowUps{}
	d := New(Options{ID: "deal-1", Clock: clock.Now, FollowUps: svc})
	return d, clock, svc
}

func scheduleOne(t *testing.T, d *Deal) models.FollowUp {
	t.Helper()
	f, outcome, err := d.AddFollowUp(context.Background(), models.FollowUp{
		FollowUpUUID:  "f1",
		Subject:       "Check in on legal review",
		ScheduledDate: base.Add(72 * time.Hour),
		Status:        models.FollowUpCompleted,
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, outcome)
	return f
}

func TestAddFollowUpIsConfirmed(t *testing.T) {
	d, _, svc := newFollowUpDeal(t)
	f := scheduleOne(t, d)

	assert.Equal(t, models.FollowUpScheduled, f.Status)
	assert.Equal(t, " [confirmed]", f.Description)
	assert.Equal(t, []string{"create"}, svc.calls)

	stored, ok := d.FollowUp("f1")
	require.True(t, ok)
	assert.Equal(t, f, stored)
	assert.Equal(t, models.ColorInfo, d.Timeline()[0].Color)
}

func TestAddFollowUpValidation(t *testing.T) {
	d, _, svc := newFollowUpDeal(t)

	_, _, err := d.AddFollowUp(context.Background(), models.FollowUp{ScheduledDate: base})
	field, _ := FieldOf(err)
	assert.Equal(t, "subject", field)

	_, _, err = d.AddFollowUp(context.Background(), models.FollowUp{Subject: "x"})
	field, _ = FieldOf(err)
	assert.Equal(t, "scheduledDate", field)

	assert.Empty(t, svc.calls)
	assert.Zero(t, d.TimelineLen())
}

func TestAddThenCancelFollowUpScenario(t *testing.T) {
	d, _, _ := newFollowUpDeal(t)
	ctx := context.Background()
	scheduleOne(t, d)

	outcome, err := d.CancelFollowUp(ctx, "f1", "")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, OutcomeRejected, outcome)

	outcome, err = d.CancelFollowUp(ctx, "f1", "Customer paused the project")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	f, _ := d.FollowUp("f1")
	assert.Equal(t, models.FollowUpCancelled, f.Status)
	assert.Equal(t, "Customer paused the project", f.CancellationReason)
	assert.False(t, f.CanPerformActions())

	events := d.Timeline()
	require.Len(t, events, 2)
	details := events[0].Details.(models.FollowUpDetails)
	assert.Equal(t, models.ActionCancelled, details.Action)
	assert.Equal(t, models.ColorFailure, events[0].Color)
	require.NotNil(t, details.Previous)
	assert.Equal(t, models.FollowUpScheduled, details.Previous.Status)
}

func TestCompleteFollowUp(t *testing.T) {
	d, clock, _ := newFollowUpDeal(t)
	scheduleOne(t, d)
	clock.Advance(time.Hour)

	outcome, err := d.CompleteFollowUp(context.Background(), "f1", "Legal approved")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	f, _ := d.FollowUp("f1")
	assert.Equal(t, models.FollowUpCompleted, f.Status)
	assert.Equal(t, "Legal approved", f.Outcome)
	require.NotNil(t, f.CompletedDate)
	assert.Equal(t, clock.Now(), *f.CompletedDate)
	assert.Equal(t, models.ColorSuccess, d.Timeline()[0].Color)
}

func TestRescheduleHistory(t *testing.T) {
	d, clock, _ := newFollowUpDeal(t)
	ctx := context.Background()
	original := scheduleOne(t, d).ScheduledDate

	first := base.Add(96 * time.Hour)
	_, err := d.RescheduleFollowUp(ctx, "f1", first, "Legal needs another day")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	second := base.Add(120 * time.Hour)
	_, err = d.RescheduleFollowUp(ctx, "f1", second, "Pushed again")
	require.NoError(t, err)

	f, _ := d.FollowUp("f1")
	assert.Equal(t, models.FollowUpRescheduled, f.Status)
	assert.Equal(t, second, f.ScheduledDate)
	require.NotNil(t, f.OriginalScheduledDate)
	assert.Equal(t, original, *f.OriginalScheduledDate)
	assert.Equal(t, 2, f.RescheduleCount)
	assert.Equal(t, "Pushed again", f.NextFollowUpNotes)
	assert.Equal(t, models.ColorWarning, d.Timeline()[0].Color)
}

func TestRescheduleRejectsPastOrPresent(t *testing.T) {
	d, clock, _ := newFollowUpDeal(t)
	scheduleOne(t, d)

	for _, when := range []time.Time{clock.Now(), clock.Now().Add(-time.Minute)} {
		outcome, err := d.RescheduleFollowUp(context.Background(), "f1", when, "notes")
		field, _ := FieldOf(err)
		assert.Equal(t, "scheduledDate", field)
		assert.Equal(t, OutcomeRejected, outcome)
	}

	_, err := d.RescheduleFollowUp(context.Background(), "f1", clock.Now().Add(time.Hour), " ")
	field, _ := FieldOf(err)
	assert.Equal(t, "nextFollowUpNotes", field)
	assert.Equal(t, 1, d.TimelineLen())
}

func TestServiceFailureLeavesDealUnchanged(t *testing.T) {
	d, _, svc := newFollowUpDeal(t)
	ctx := context.Background()
	scheduleOne(t, d)

	boom := errors.New("connection refused")
	svc.err = boom
	before := d.Snapshot()

	_, err := d.CompleteFollowUp(ctx, "f1", "done")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to complete follow-up")

	_, err = d.CancelFollowUp(ctx, "f1", "nope")
	require.ErrorIs(t, err, boom)

	_, err = d.RescheduleFollowUp(ctx, "f1", base.Add(200*time.Hour), "later")
	require.ErrorIs(t, err, boom)

	_, err = d.DeleteFollowUp(ctx, "f1")
	require.ErrorIs(t, err, boom)

	_, _, err = d.AddFollowUp(ctx, models.FollowUp{Subject: "Another", ScheduledDate: base.Add(time.Hour)})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, before, d.Snapshot())
}

func TestUpdateFollowUp(t *testing.T) {
	d, _, _ := newFollowUpDeal(t)
	scheduleOne(t, d)

	subject := "Check in on procurement"
	outcome, err := d.UpdateFollowUp(context.Background(), "f1", models.FollowUpPatch{Subject: &subject})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	f, _ := d.FollowUp("f1")
	assert.Equal(t, subject, f.Subject)
	assert.Equal(t, models.FollowUpScheduled, f.Status)

	empty := ""
	_, err = d.UpdateFollowUp(context.Background(), "f1", models.FollowUpPatch{Subject: &empty})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteFollowUpAnyStatus(t *testing.T) {
	d, _, _ := newFollowUpDeal(t)
	ctx := context.Background()
	scheduleOne(t, d)
	_, err := d.CompleteFollowUp(ctx, "f1", "done")
	require.NoError(t, err)

	outcome, err := d.DeleteFollowUp(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	assert.Empty(t, d.FollowUps())

	details := d.Timeline()[0].Details.(models.FollowUpDetails)
	assert.Equal(t, models.ActionRemoved, details.Action)
	assert.Equal(t, models.FollowUpCompleted, details.FollowUp.Status)

	outcome, err = d.DeleteFollowUp(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
}

func TestFollowUpActionsOnMissingID(t *testing.T) {
	d, _, svc := newFollowUpDeal(t)
	ctx := context.Background()

	outcome, err := d.CompleteFollowUp(ctx, "nope", "x")
	assert.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)

	outcome, err = d.RescheduleFollowUp(ctx, "nope", base.Add(time.Hour), "x")
	assert.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)

	assert.Empty(t, svc.calls)
}

func TestOverdueFollowUps(t *testing.T) {
	d, clock, _ := newFollowUpDeal(t)
	scheduleOne(t, d)
	assert.Empty(t, d.OverdueFollowUps())

	clock.Advance(100 * time.Hour)
	overdue := d.OverdueFollowUps()
	require.Len(t, overdue, 1)
	assert.Equal(t, models.FollowUpScheduled, overdue[0].Status)
}

func TestApplyPolicy(t *testing.T) {
	assert.Equal(t, ApplyConfirmed, ApplyPolicyFor(models.EventFollowUp))
	for _, kind := range []models.EventType{models.EventProduct, models.EventAttachment, models.EventNote, models.EventStageChange} {
		assert.Equal(t, ApplyOptimistic, ApplyPolicyFor(kind))
	}
}

// ABOUTME: Tests for rebuilding projections from stored timelines
package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

func TestReindexRepairsProjections(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	store := NewFollowUpStore(db)

	rec := &DealRecord{Title: "Fleet renewal"}
	require.NoError(t, CreateDeal(db, rec))

	d := deal.New(deal.Options{ID: rec.ID, FollowUps: store})
	_, _, err := d.AddFollowUp(ctx, models.FollowUp{FollowUpUUID: "f1", Subject: "Audit", ScheduledDate: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	_, _, err = d.AddFollowUp(ctx, models.FollowUp{FollowUpUUID: "f2", Subject: "Pricing", ScheduledDate: time.Now().Add(2 * time.Hour)})
	require.NoError(t, err)
	_, err = d.CompleteFollowUp(ctx, "f2", "agreed")
	require.NoError(t, err)
	_, err = d.ChangeStage(deal.StageChange{Target: models.StageNegotiation, Reason: "Budget approved"})
	require.NoError(t, err)
	_, err = SaveDeal(db, d)
	require.NoError(t, err)

	// Knock the projections out of step with the timeline.
	_, err = db.Exec(`UPDATE deals SET stage = 'discussion' WHERE id = ?`, rec.ID)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM follow_ups WHERE id = 'f1'`)
	require.NoError(t, err)
	_, err = store.save(ctx, rec.ID, models.FollowUp{FollowUpUUID: "f2", Subject: "Pricing", Status: models.FollowUpScheduled})
	require.NoError(t, err)
	_, err = store.CreateFollowUp(ctx, rec.ID, models.FollowUp{FollowUpUUID: "orphan", Subject: "Ghost", ScheduledDate: time.Now()})
	require.NoError(t, err)

	report, err := Reindex(ctx, db, true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deals)
	assert.Equal(t, []string{rec.ID}, report.StagesFixed)
	assert.Equal(t, 2, report.FollowUpsFixed)
	assert.Equal(t, 1, report.FollowUpsPruned)

	// A dry run leaves everything as it was.
	found, err := GetDeal(db, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageDiscussion, found.Stage)

	report, err = Reindex(ctx, db, false)
	require.NoError(t, err)
	assert.True(t, report.Changed())

	found, err = GetDeal(db, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageNegotiation, found.Stage)

	f1, err := store.GetFollowUp(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Audit", f1.Subject)

	f2, err := store.GetFollowUp(ctx, "f2")
	require.NoError(t, err)
	assert.Equal(t, models.FollowUpCompleted, f2.Status)

	_, err = store.GetFollowUp(ctx, "orphan")
	assert.ErrorIs(t, err, ErrFollowUpNotFound)

	report, err = Reindex(ctx, db, false)
	require.NoError(t, err)
	assert.False(t, report.Changed())
}

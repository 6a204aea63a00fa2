// ABOUTME: Tests for stage graphs and the dashboard
// ABOUTME: Builds deals in memory or in a temp database and inspects the rendered output
package viz

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func closedDeal(t *testing.T) *deal.Deal {
	t.Helper()
	d := deal.New(deal.Options{ID: "deal-1", Clock: func() time.Time { return base }})

	_, err := d.ChangeStage(deal.StageChange{Target: models.StageNegotiation, Reason: "pricing"})
	require.NoError(t, err)
	_, err = d.AddNote(models.Note{NoteUUID: "n1", Content: "sent quote"})
	require.NoError(t, err)
	_, err = d.ChangeStage(deal.StageChange{
		Target: models.StageClosedWon,
		Reason: "signed",
		Proof:  []models.Attachment{{AttachmentUUID: "p1", FileName: "contract.pdf", URL: "https://example.com/contract.pdf"}},
	})
	require.NoError(t, err)
	return d
}

func TestStageTransitions(t *testing.T) {
	d := closedDeal(t)

	got := StageTransitions(d.Timeline())
	require.Len(t, got, 2)
	assert.Equal(t, StageTransition{EventID: 1, From: models.StageDiscussion, To: models.StageNegotiation, Reason: "pricing"}, got[0])
	assert.Equal(t, models.StageClosedWon, got[1].To)
	assert.Equal(t, 3, got[1].EventID)
}

func TestStageGraph(t *testing.T) {
	dot, err := StageGraph(closedDeal(t).Timeline())
	require.NoError(t, err)

	assert.Contains(t, dot, "Closed Won")
	assert.Contains(t, dot, "#1 pricing")
	assert.Contains(t, dot, "#3 signed")
}

func TestStageGraphEmptyTimeline(t *testing.T) {
	dot, err := StageGraph(nil)
	require.NoError(t, err)
	assert.Contains(t, dot, "Discussion")
	assert.NotContains(t, dot, "->")
}

func TestDashboard(t *testing.T) {
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	record := &db.DealRecord{Title: "Fleet renewal", Company: "Acme"}
	require.NoError(t, db.CreateDeal(database, record))

	d := deal.New(deal.Options{ID: record.ID, FollowUps: db.NewFollowUpStore(database)})
	_, err = d.AddProduct(models.Product{ProductUUID: "p1", ProductName: "Seats", Quantity: 2, UnitPrice: 5000})
	require.NoError(t, err)
	_, _, err = d.AddFollowUp(context.Background(), models.FollowUp{Subject: "Call back", ScheduledDate: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	_, err = db.SaveDeal(database, d)
	require.NoError(t, err)

	stats, err := GenerateDashboardStats(context.Background(), database, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalDeals)
	assert.Equal(t, PipelineStageStats{Stage: models.StageDiscussion, Count: 1, Amount: 10000}, stats.PipelineByStage[models.StageDiscussion])
	require.Len(t, stats.DueFollowUps, 1)
	assert.Equal(t, "Fleet renewal", stats.DueFollowUps[0].DealTitle)

	out := RenderDashboard(stats)
	assert.Contains(t, out, "Discussion")
	assert.Contains(t, out, "$100.00")
	assert.Contains(t, out, "Call back")
}

// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides an ASCII pipeline overview built from stored deals and follow-ups
package viz

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

type DashboardStats struct {
	PipelineByStage map[models.Stage]PipelineStageStats

	TotalDeals    int
	TotalContacts int

	DueFollowUps []db.DueFollowUp
	StaleDeals   []StaleDeal
}

type PipelineStageStats struct {
	Stage  models.Stage
	Count  int
	Amount int64 // in cents
}

type StaleDeal struct {
	Title     string
	DaysSince int
}

// GenerateDashboardStats replays every open deal to total its products.
func GenerateDashboardStats(ctx context.Context, database *sql.DB, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{
		PipelineByStage: make(map[models.Stage]PipelineStageStats),
	}

	deals, err := db.FindDeals(database, "", "", 10000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	stats.TotalDeals = len(deals)

	for _, record := range deals {
		pstats := stats.PipelineByStage[record.Stage]
		pstats.Stage = record.Stage
		pstats.Count++

		d, err := db.LoadDeal(database, record.ID, deal.Options{Clock: func() time.Time { return now }})
		if err != nil {
			return nil, fmt.Errorf("failed to load deal %s: %w", record.ID, err)
		}
		for _, p := range d.Products() {
			pstats.Amount += p.Total()
		}
		d.Close()
		stats.PipelineByStage[record.Stage] = pstats

		if record.Stage.IsClosed() {
			continue
		}
		daysSince := int(now.Sub(record.UpdatedAt).Hours() / 24)
		if daysSince > 14 {
			stats.StaleDeals = append(stats.StaleDeals, StaleDeal{Title: record.Title, DaysSince: daysSince})
		}
	}

	contacts, err := db.NewContactDirectory(database).ListContactPersons(ctx, "", 10000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	stats.TotalContacts = len(contacts)

	stats.DueFollowUps, err = db.NewFollowUpStore(database).ListDueFollowUps(ctx, now, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch follow-ups: %w", err)
	}

	return stats, nil
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  DEALDESK DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.PipelineByStage)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  💼 %d deals  📇 %d contacts\n\n", stats.TotalDeals, stats.TotalContacts))

	if len(stats.DueFollowUps) > 0 || len(stats.StaleDeals) > 0 {
		out.WriteString("NEEDS ATTENTION\n")

		if len(stats.DueFollowUps) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d follow-ups due\n", len(stats.DueFollowUps)))
			for _, due := range stats.DueFollowUps {
				out.WriteString(fmt.Sprintf("     • %s: %s (%s)\n", due.DealTitle, due.FollowUp.Subject, due.FollowUp.ScheduledDate.Format("2006-01-02")))
			}
		}

		if len(stats.StaleDeals) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d deals - stale (no activity in 14+ days)\n", len(stats.StaleDeals)))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, pipeline map[models.Stage]PipelineStageStats) {
	maxCount := 0
	for _, pstats := range pipeline {
		if pstats.Count > maxCount {
			maxCount = pstats.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, stage := range models.Stages {
		pstats, exists := pipeline[stage]
		if !exists {
			continue
		}

		barLength := (pstats.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		amount := float64(pstats.Amount) / 100

		out.WriteString(fmt.Sprintf("  %-13s %s  %2d ($%.2f)\n", stage.Label(), bar, pstats.Count, amount))
	}
}

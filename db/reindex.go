// ABOUTME: Rebuilds deal headers and follow-up rows from the stored timelines
// ABOUTME: The timeline is the source of truth; everything else is a projection of it
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

// ReindexReport lists what Reindex found out of step with the timelines.
type ReindexReport struct {
	Deals           int
	StagesFixed     []string
	FollowUpsFixed  int
	FollowUpsPruned int
}

// Changed reports whether any projection disagreed with its timeline.
func (r *ReindexReport) Changed() bool {
	return len(r.StagesFixed) > 0 || r.FollowUpsFixed > 0 || r.FollowUpsPruned > 0
}

// Reindex replays every deal and rewrites the stage column and follow_ups rows
// that disagree with the replayed state. With dryRun nothing is written.
func Reindex(ctx context.Context, database *sql.DB, dryRun bool) (*ReindexReport, error) {
	records, err := FindDeals(database, "", "", math.MaxInt32)
	if err != nil {
		return nil, err
	}

	report := &ReindexReport{Deals: len(records)}
	store := NewFollowUpStore(database)

	for _, record := range records {
		events, err := GetTimeline(database, record.ID)
		if err != nil {
			return nil, err
		}
		state, err := deal.Replay(events)
		if err != nil {
			return nil, fmt.Errorf("failed to replay deal %s: %w", record.ID, err)
		}

		if state.Stage != record.Stage {
			report.StagesFixed = append(report.StagesFixed, record.ID)
			if !dryRun {
				if _, err := database.ExecContext(ctx, `UPDATE deals SET stage = ? WHERE id = ?`, state.Stage, record.ID); err != nil {
					return nil, fmt.Errorf("failed to update stage: %w", err)
				}
			}
		}

		if err := reindexFollowUps(ctx, store, record.ID, state.FollowUps, dryRun, report); err != nil {
			return nil, err
		}
	}

	return report, nil
}

func reindexFollowUps(ctx context.Context, store *FollowUpStore, dealID string, want []models.FollowUp, dryRun bool, report *ReindexReport) error {
	keep := make(map[string]bool, len(want))
	for _, f := range want {
		keep[f.FollowUpUUID] = true

		stored, err := store.GetFollowUp(ctx, f.FollowUpUUID)
		switch {
		case errors.Is(err, ErrFollowUpNotFound):
			report.FollowUpsFixed++
			if !dryRun {
				if _, err := store.CreateFollowUp(ctx, dealID, f); err != nil {
					return err
				}
			}
		case err != nil:
			return err
		case stored.Status != f.Status || !stored.ScheduledDate.Equal(f.ScheduledDate) || stored.Subject != f.Subject:
			report.FollowUpsFixed++
			if !dryRun {
				if _, err := store.save(ctx, dealID, f); err != nil {
					return err
				}
			}
		}
	}

	ids, err := store.followUpIDs(ctx, dealID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if keep[id] {
			continue
		}
		report.FollowUpsPruned++
		if !dryRun {
			if err := store.DeleteFollowUp(ctx, dealID, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *FollowUpStore) followUpIDs(ctx context.Context, dealID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM follow_ups WHERE deal_id = ?`, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan follow-up: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ABOUTME: Timeline persistence and deal rehydration
// ABOUTME: The stored timeline is the only record of deal state; loading replays it
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

// AppendTimeline stores the events newer than what is already saved for dealID.
// events may be the full newest-first timeline; already stored ids are skipped.
// It returns how many events were written.
func AppendTimeline(db *sql.DB, dealID string, events []models.TimelineEvent) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM deals WHERE id = ?`, dealID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check deal: %w", err)
	}
	if exists == 0 {
		return 0, ErrDealNotFound
	}

	var stored int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM timeline_events WHERE deal_id = ?`, dealID).Scan(&stored); err != nil {
		return 0, fmt.Errorf("failed to read timeline length: %w", err)
	}

	written := 0
	var stage models.Stage
	var last time.Time
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.ID <= stored {
			continue
		}
		if ev.ID != stored+written+1 {
			return 0, fmt.Errorf("timeline gap: got event %d after %d", ev.ID, stored+written)
		}

		details, err := json.Marshal(ev.Details)
		if err != nil {
			return 0, fmt.Errorf("failed to encode event %d: %w", ev.ID, err)
		}
		_, err = tx.Exec(`
			INSERT INTO timeline_events (deal_id, seq, type, title, description, timestamp, user_name, user_uuid, color, details)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, dealID, ev.ID, ev.Type, ev.Title, ev.Description, ev.Timestamp, ev.User, ev.UserUUID, ev.Color, string(details))
		if err != nil {
			return 0, fmt.Errorf("failed to insert event %d: %w", ev.ID, err)
		}

		if sc, ok := ev.Details.(models.StageChangeDetails); ok {
			stage = sc.NewStage
		}
		last = ev.Timestamp
		written++
	}

	if written > 0 {
		if stage != "" {
			_, err = tx.Exec(`UPDATE deals SET stage = ?, updated_at = ? WHERE id = ?`, stage, last, dealID)
		} else {
			_, err = tx.Exec(`UPDATE deals SET updated_at = ? WHERE id = ?`, last, dealID)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to touch deal: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit timeline: %w", err)
	}
	return written, nil
}

// GetTimeline returns the stored events for dealID, newest first.
func GetTimeline(db *sql.DB, dealID string) ([]models.TimelineEvent, error) {
	rows, err := db.Query(`
		SELECT seq, type, title, description, timestamp, user_name, user_uuid, color, details
		FROM timeline_events
		WHERE deal_id = ?
		ORDER BY seq DESC
	`, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.TimelineEvent
	for rows.Next() {
		var ev models.TimelineEvent
		var description, userName, userUUID, color sql.NullString
		var raw string
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.Title, &description, &ev.Timestamp, &userName, &userUUID, &color, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Description = description.String
		ev.User = userName.String
		ev.UserUUID = userUUID.String
		ev.Color = models.Color(color.String)

		ev.Details, err = models.DecodeDetails(ev.Type, json.RawMessage(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timeline: %w", err)
	}

	return events, nil
}

// SaveDeal writes any events d has recorded since it was loaded.
func SaveDeal(db *sql.DB, d *deal.Deal) (int, error) {
	return AppendTimeline(db, d.ID(), d.Timeline())
}

// LoadDeal rebuilds a deal by replaying its stored timeline. opts.ID is ignored.
func LoadDeal(db *sql.DB, dealID string, opts deal.Options) (*deal.Deal, error) {
	if _, err := GetDeal(db, dealID); err != nil {
		return nil, err
	}
	events, err := GetTimeline(db, dealID)
	if err != nil {
		return nil, err
	}

	opts.ID = dealID
	d, err := deal.Restore(opts, events)
	if err != nil {
		return nil, fmt.Errorf("failed to restore deal %s: %w", dealID, err)
	}
	return d, nil
}

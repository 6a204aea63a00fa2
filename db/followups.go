// ABOUTME: SQLite-backed follow-up persistence for deals
// ABOUTME: Confirms follow-up changes before a deal applies them
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/dealdesk/models"
)

// FollowUpStore persists follow-ups. It satisfies deal.FollowUpService.
type FollowUpStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewFollowUpStore(db *sql.DB) *FollowUpStore {
	return &FollowUpStore{db: db, now: time.Now}
}

func (s *FollowUpStore) CreateFollowUp(ctx context.Context, dealID string, f models.FollowUp) (models.FollowUp, error) {
	f.UpdatedAt = s.now()
	data, err := json.Marshal(f)
	if err != nil {
		return models.FollowUp{}, fmt.Errorf("failed to encode follow-up: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO follow_ups (id, deal_id, subject, status, scheduled_date, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, f.FollowUpUUID, dealID, f.Subject, f.Status, f.ScheduledDate, string(data), f.UpdatedAt)
	if err != nil {
		return models.FollowUp{}, fmt.Errorf("failed to insert follow-up: %w", err)
	}
	return f, nil
}

func (s *FollowUpStore) save(ctx context.Context, dealID string, f models.FollowUp) (models.FollowUp, error) {
	f.UpdatedAt = s.now()
	data, err := json.Marshal(f)
	if err != nil {
		return models.FollowUp{}, fmt.Errorf("failed to encode follow-up: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE follow_ups
		SET subject = ?, status = ?, scheduled_date = ?, data = ?, updated_at = ?
		WHERE id = ? AND deal_id = ?
	`, f.Subject, f.Status, f.ScheduledDate, string(data), f.UpdatedAt, f.FollowUpUUID, dealID)
	if err != nil {
		return models.FollowUp{}, fmt.Errorf("failed to update follow-up: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.FollowUp{}, ErrFollowUpNotFound
	}
	return f, nil
}

func (s *FollowUpStore) UpdateFollowUp(ctx context.Context, dealID string, f models.FollowUp) (models.FollowUp, error) {
	return s.save(ctx, dealID, f)
}

func (s *FollowUpStore) CompleteFollowUp(ctx context.Context, dealID string, f models.FollowUp) (models.FollowUp, error) {
	return s.save(ctx, dealID, f)
}

func (s *FollowUpStore) CancelFollowUp(ctx context.Context, dealID string, f models.FollowUp) (models.FollowUp, error) {
	return s.save(ctx, dealID, f)
}

func (s *FollowUpStore) RescheduleFollowUp(ctx context.Context, dealID string, f models.FollowUp) (models.FollowUp, error) {
	return s.save(ctx, dealID, f)
}

func (s *FollowUpStore) DeleteFollowUp(ctx context.Context, dealID, followUpID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM follow_ups WHERE id = ? AND deal_id = ?`, followUpID, dealID)
	if err != nil {
		return fmt.Errorf("failed to delete follow-up: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFollowUpNotFound
	}
	return nil
}

// GetFollowUp returns one stored follow-up.
func (s *FollowUpStore) GetFollowUp(ctx context.Context, id string) (*models.FollowUp, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM follow_ups WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFollowUpNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get follow-up: %w", err)
	}

	var f models.FollowUp
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("failed to decode follow-up: %w", err)
	}
	return &f, nil
}

// DueFollowUp is an open follow-up with the deal it belongs to.
type DueFollowUp struct {
	DealID    string
	DealTitle string
	FollowUp  models.FollowUp
}

// ListDueFollowUps returns open follow-ups scheduled at or before before, oldest first.
func (s *FollowUpStore) ListDueFollowUps(ctx context.Context, before time.Time, limit int) ([]DueFollowUp, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT f.deal_id, d.title, f.data
		FROM follow_ups f
		JOIN deals d ON d.id = f.deal_id
		WHERE f.status IN ('scheduled', 'rescheduled') AND f.scheduled_date <= ?
		ORDER BY f.scheduled_date ASC
		LIMIT ?
	`, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due follow-ups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var due []DueFollowUp
	for rows.Next() {
		var item DueFollowUp
		var raw string
		if err := rows.Scan(&item.DealID, &item.DealTitle, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan follow-up: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &item.FollowUp); err != nil {
			return nil, fmt.Errorf("failed to decode follow-up: %w", err)
		}
		due = append(due, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating follow-ups: %w", err)
	}

	return due, nil
}

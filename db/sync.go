// ABOUTME: Database operations for the sync_state table
// ABOUTME: Tracks contact directory sync status and page tokens per external service
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Sync statuses stored in sync_state.status.
const (
	SyncIdle    = "idle"
	SyncRunning = "syncing"
	SyncFailed  = "error"
)

// SyncState records the last contact import from one service.
type SyncState struct {
	Service   string
	LastSync  *time.Time
	Token     string
	Status    string
	LastError string
	UpdatedAt time.Time
}

const syncStateColumns = `service, last_sync_time, last_sync_token, status, error_message, updated_at`

func scanSyncState(s scanner) (*SyncState, error) {
	var state SyncState
	var lastSync sql.NullTime
	var token, status, lastErr sql.NullString
	if err := s.Scan(&state.Service, &lastSync, &token, &status, &lastErr, &state.UpdatedAt); err != nil {
		return nil, err
	}
	if lastSync.Valid {
		state.LastSync = &lastSync.Time
	}
	state.Token = token.String
	state.Status = status.String
	state.LastError = lastErr.String
	return &state, nil
}

// GetSyncState returns nil when service has never synced.
func GetSyncState(db *sql.DB, service string) (*SyncState, error) {
	state, err := scanSyncState(db.QueryRow(`SELECT `+syncStateColumns+` FROM sync_state WHERE service = ?`, service))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}
	return state, nil
}

// MarkSyncStarted flags service as running.
func MarkSyncStarted(db *sql.DB, service string) error {
	return setSyncStatus(db, service, SyncRunning, "")
}

// MarkSyncFailed stores the error that stopped the last run.
func MarkSyncFailed(db *sql.DB, service string, cause error) error {
	return setSyncStatus(db, service, SyncFailed, cause.Error())
}

func setSyncStatus(db *sql.DB, service, status, message string) error {
	var msg sql.NullString
	if message != "" {
		msg = sql.NullString{String: message, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO sync_state (service, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP
	`, service, status, msg)
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	return nil
}

// MarkSyncDone records a successful run and the token to resume from.
func MarkSyncDone(db *sql.DB, service, token string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (service, last_sync_time, last_sync_token, status, created_at, updated_at)
		VALUES (?, CURRENT_TIMESTAMP, ?, 'idle', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			last_sync_time = CURRENT_TIMESTAMP,
			last_sync_token = excluded.last_sync_token,
			status = 'idle',
			error_message = NULL,
			updated_at = CURRENT_TIMESTAMP
	`, service, token)
	if err != nil {
		return fmt.Errorf("failed to update sync token: %w", err)
	}
	return nil
}

// ListSyncStates returns every service's state ordered by name.
func ListSyncStates(db *sql.DB) ([]SyncState, error) {
	rows, err := db.Query(`SELECT ` + syncStateColumns + ` FROM sync_state ORDER BY service`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var states []SyncState
	for rows.Next() {
		state, err := scanSyncState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync state: %w", err)
		}
		states = append(states, *state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync states: %w", err)
	}
	return states, nil
}

// ABOUTME: Tests for sync state tracking
package db

import (
	"errors"
	"testing"
)

func TestSyncStateTransitions(t *testing.T) {
	db := setupTestDB(t)

	state, err := GetSyncState(db, "google_people")
	if err != nil {
		t.Fatalf("GetSyncState failed: %v", err)
	}
	if state != nil {
		t.Fatalf("Expected no state before first sync, got %+v", state)
	}

	if err := MarkSyncStarted(db, "google_people"); err != nil {
		t.Fatalf("MarkSyncStarted failed: %v", err)
	}
	if err := MarkSyncFailed(db, "google_people", errors.New("token expired")); err != nil {
		t.Fatalf("MarkSyncFailed failed: %v", err)
	}

	state, err = GetSyncState(db, "google_people")
	if err != nil {
		t.Fatalf("GetSyncState failed: %v", err)
	}
	if state.Status != SyncFailed || state.LastError != "token expired" {
		t.Errorf("Unexpected failed state: %+v", state)
	}

	if err := MarkSyncDone(db, "google_people", "next-page"); err != nil {
		t.Fatalf("MarkSyncDone failed: %v", err)
	}
	state, err = GetSyncState(db, "google_people")
	if err != nil {
		t.Fatalf("GetSyncState failed: %v", err)
	}
	if state.Status != SyncIdle || state.Token != "next-page" || state.LastError != "" || state.LastSync == nil {
		t.Errorf("Unexpected done state: %+v", state)
	}

	states, err := ListSyncStates(db)
	if err != nil {
		t.Fatalf("ListSyncStates failed: %v", err)
	}
	if len(states) != 1 {
		t.Errorf("Expected 1 sync state, got %d", len(states))
	}
}

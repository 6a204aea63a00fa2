// ABOUTME: Database schema definitions and migrations
// ABOUTME: Deals, their timelines, follow-ups, and the contact directory
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS deals (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	company TEXT,
	stage TEXT NOT NULL DEFAULT 'discussion',
	created_by TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deals_stage ON deals(stage);
CREATE INDEX IF NOT EXISTS idx_deals_updated_at ON deals(updated_at DESC);

CREATE TABLE IF NOT EXISTS timeline_events (
	deal_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	timestamp DATETIME NOT NULL,
	user_name TEXT,
	user_uuid TEXT,
	color TEXT,
	details TEXT NOT NULL,
	PRIMARY KEY (deal_id, seq),
	FOREIGN KEY (deal_id) REFERENCES deals(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_timeline_events_type ON timeline_events(deal_id, type);

CREATE TABLE IF NOT EXISTS follow_ups (
	id TEXT PRIMARY KEY,
	deal_id TEXT NOT NULL,
	subject TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('scheduled', 'rescheduled', 'completed', 'cancelled')),
	scheduled_date DATETIME NOT NULL,
	data TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (deal_id) REFERENCES deals(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_follow_ups_deal ON follow_ups(deal_id);
CREATE INDEX IF NOT EXISTS idx_follow_ups_due ON follow_ups(status, scheduled_date);

CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	role TEXT,
	source TEXT NOT NULL DEFAULT 'manual',
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);
CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);

CREATE TABLE IF NOT EXISTS sync_state (
	service TEXT PRIMARY KEY,
	last_sync_time DATETIME,
	last_sync_token TEXT,
	status TEXT CHECK(status IN ('idle', 'syncing', 'error')),
	error_message TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

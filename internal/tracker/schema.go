package tracker

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied at startup. The store file is created on first use,
// so a fresh deployment needs no separate migration step.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS emails (
		id TEXT PRIMARY KEY,
		recipient TEXT NOT NULL,
		subject TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS links (
		id TEXT PRIMARY KEY,
		email_id TEXT NOT NULL,
		original_url TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (email_id) REFERENCES emails(id)
	)`,
	`CREATE TABLE IF NOT EXISTS opens (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email_id TEXT NOT NULL,
		opened_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		method TEXT NOT NULL DEFAULT 'pixel',
		FOREIGN KEY (email_id) REFERENCES emails(id)
	)`,
	`CREATE TABLE IF NOT EXISTS clicks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		link_id TEXT NOT NULL,
		email_id TEXT NOT NULL,
		clicked_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (link_id) REFERENCES links(id),
		FOREIGN KEY (email_id) REFERENCES emails(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_opens_email_id ON opens(email_id)`,
	`CREATE INDEX IF NOT EXISTS idx_links_email_id ON links(email_id)`,
	`CREATE INDEX IF NOT EXISTS idx_clicks_email_id ON clicks(email_id)`,
}

// InitSchema creates the tracking tables if they do not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

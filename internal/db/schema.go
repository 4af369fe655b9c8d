package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the full database schema.
//
// Items and issues carry an autoincrement seq so listings follow insertion
// order; the public identifier is the UUID in id.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    name          TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    seq            INTEGER PRIMARY KEY AUTOINCREMENT,
    id             TEXT NOT NULL UNIQUE,
    name           TEXT NOT NULL,
    description    TEXT NOT NULL,
    color          TEXT NOT NULL,
    brand          TEXT NOT NULL DEFAULT '',
    unique_id      TEXT NOT NULL DEFAULT '',
    lost_at        DATETIME NOT NULL,
    location       TEXT NOT NULL,
    image          TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL DEFAULT 'lost' CHECK (status IN ('lost', 'found', 'matched', 'claimed')),
    reporter_id    TEXT NOT NULL,
    reporter_name  TEXT NOT NULL,
    reporter_email TEXT NOT NULL,
    created_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);

CREATE TABLE IF NOT EXISTS item_tombstones (
    item_id    TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    deleted_at DATETIME NOT NULL,
    deleted_by TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS issues (
    seq            INTEGER PRIMARY KEY AUTOINCREMENT,
    id             TEXT NOT NULL UNIQUE,
    item_id        TEXT NOT NULL,
    claimant_id    TEXT NOT NULL,
    claimant_name  TEXT NOT NULL,
    claimant_email TEXT NOT NULL,
    description    TEXT NOT NULL,
    proof          TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    created_at     DATETIME NOT NULL,
    decided_at     DATETIME,
    decided_by     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_issues_item ON issues(item_id);

CREATE UNIQUE INDEX IF NOT EXISTS idx_issues_one_pending_per_item
    ON issues(item_id) WHERE status = 'pending';

CREATE TABLE IF NOT EXISTS attachments (
    ref         TEXT PRIMARY KEY,
    mime        TEXT NOT NULL,
    data        BLOB NOT NULL,
    size        INTEGER NOT NULL,
    uploaded_by TEXT NOT NULL,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"
)

// Schema creates the tables the repository expects
const Schema = `
CREATE TABLE IF NOT EXISTS content (
	id            UUID PRIMARY KEY,
	title         TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT '',
	description   TEXT NOT NULL DEFAULT '',
	thumbnail_url TEXT NOT NULL DEFAULT '',
	video_url     TEXT NOT NULL DEFAULT '',
	status        VARCHAR(32) NOT NULL DEFAULT 'draft',
	visibility    VARCHAR(32) NOT NULL DEFAULT 'public',
	tags          TEXT[] NOT NULL DEFAULT '{}',
	publish_date  TIMESTAMPTZ NOT NULL,
	release_year  INTEGER,
	duration      INTEGER,
	views         BIGINT NOT NULL DEFAULT 0 CHECK (views >= 0),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS content_publish_date_idx ON content (publish_date DESC);

CREATE TABLE IF NOT EXISTS users (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	role       VARCHAR(32) NOT NULL DEFAULT 'user',
	watchlist  JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate applies Schema. It is idempotent.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

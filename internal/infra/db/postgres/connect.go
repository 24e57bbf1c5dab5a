package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Schema creates the tables used by the repositories when missing.
const Schema = `
CREATE TABLE IF NOT EXISTS assessment_snapshots (
  snapshot_key TEXT        PRIMARY KEY,
  payload      JSONB       NOT NULL,
  updated_at   TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS assessment_analyses (
  id          TEXT             PRIMARY KEY,
  session_id  TEXT             NOT NULL,
  variant     TEXT             NOT NULL,
  mode        TEXT             NOT NULL,
  reason      TEXT             NOT NULL,
  verdict     TEXT             NOT NULL,
  score       DOUBLE PRECISION NOT NULL,
  result_json JSONB            NOT NULL,
  created_at  TIMESTAMPTZ      NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_session ON assessment_analyses (session_id, created_at DESC);`

// Migrate runs Schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

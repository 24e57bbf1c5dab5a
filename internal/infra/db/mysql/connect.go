package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
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
  snapshot_key VARCHAR(191) NOT NULL PRIMARY KEY,
  payload      JSON         NOT NULL,
  updated_at   DATETIME(6)  NOT NULL
);
CREATE TABLE IF NOT EXISTS assessment_analyses (
  id          VARCHAR(64)  NOT NULL PRIMARY KEY,
  session_id  VARCHAR(64)  NOT NULL,
  variant     VARCHAR(16)  NOT NULL,
  mode        VARCHAR(16)  NOT NULL,
  reason      VARCHAR(32)  NOT NULL,
  verdict     VARCHAR(32)  NOT NULL,
  score       DOUBLE       NOT NULL,
  result_json JSON         NOT NULL,
  created_at  DATETIME(6)  NOT NULL,
  KEY idx_analyses_session (session_id, created_at)
);`

// Migrate runs Schema statement by statement.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range splitStatements(Schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

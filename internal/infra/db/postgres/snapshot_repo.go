package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bryanwahyu/automaton-ready/internal/domain/session"
)

// SnapshotRepository is a session.SnapshotStore over assessment_snapshots.
type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM assessment_snapshots WHERE snapshot_key=$1;`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrSnapshotNotFound
	}
	return data, err
}

func (r *SnapshotRepository) Put(ctx context.Context, key string, data []byte) error {
	const q = `
INSERT INTO assessment_snapshots (snapshot_key, payload, updated_at)
VALUES ($1,$2,$3)
ON CONFLICT (snapshot_key) DO UPDATE SET
  payload=EXCLUDED.payload,
  updated_at=EXCLUDED.updated_at;
`
	_, err := r.db.ExecContext(ctx, q, key, string(data), time.Now().UTC())
	return err
}

func (r *SnapshotRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM assessment_snapshots WHERE snapshot_key=$1;`, key)
	return err
}

package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/automaton-ready/internal/domain/analyst"
)

type AnalystRepository struct {
	db *sql.DB
}

func NewAnalystRepository(db *sql.DB) *AnalystRepository {
	return &AnalystRepository{db: db}
}

// Save inserts an analysis record
func (r *AnalystRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO assessment_analyses
  (id, session_id, variant, mode, reason, verdict, score, result_json, created_at)
VALUES (?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  mode=VALUES(mode), reason=VALUES(reason), verdict=VALUES(verdict),
  score=VALUES(score), result_json=VALUES(result_json);
`
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.SessionID, stringOrDash(a.Variant), string(a.Mode), stringOrDash(a.Reason),
		stringOrDash(a.Verdict), a.Score, jsonOrEmpty(a.Result), createdAt,
	)
	return err
}

const selectAnalysis = `
SELECT id, session_id, variant, mode, reason, verdict, score, result_json, created_at
FROM assessment_analyses
WHERE session_id=?
ORDER BY created_at DESC, id DESC`

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AnalystRepository) Paginate(ctx context.Context, sessionID string, page, pageSize int) ([]*domain.Analysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	rows, err := r.db.QueryContext(ctx, selectAnalysis+"\nLIMIT ? OFFSET ?;", sessionID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Latest returns the newest record of a session, nil when none exist
func (r *AnalystRepository) Latest(ctx context.Context, sessionID string) (*domain.Analysis, error) {
	row := r.db.QueryRowContext(ctx, selectAnalysis+"\nLIMIT 1;", sessionID)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s scanner) (*domain.Analysis, error) {
	var a domain.Analysis
	var mode, reason string
	if err := s.Scan(&a.ID, &a.SessionID, &a.Variant, &mode, &reason, &a.Verdict, &a.Score, &a.Result, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Mode = domain.Mode(mode)
	if reason != "-" {
		a.Reason = reason
	}
	return &a, nil
}

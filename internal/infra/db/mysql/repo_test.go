package mysql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/automaton-ready/internal/domain/analyst"
	"github.com/bryanwahyu/automaton-ready/internal/domain/session"
)

func TestSnapshotRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM assessment_snapshots")).
		WithArgs("checklist:s1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	_, err = repo.Get(ctx, "checklist:s1")
	assert.ErrorIs(t, err, session.ErrSnapshotNotFound)

	mock.ExpectExec("INSERT INTO assessment_snapshots").
		WithArgs("checklist:s1", `{"version":"1.1"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Put(ctx, "checklist:s1", []byte(`{"version":"1.1"}`)))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM assessment_snapshots")).
		WithArgs("checklist:s1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`{"version":"1.1"}`)))
	got, err := repo.Get(ctx, "checklist:s1")
	require.NoError(t, err)
	assert.Equal(t, `{"version":"1.1"}`, string(got))

	mock.ExpectExec("DELETE FROM assessment_snapshots").
		WithArgs("checklist:s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(ctx, "checklist:s1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalystRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAnalystRepository(db)
	ctx := context.Background()
	at := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO assessment_analyses").
		WithArgs("a1", "s1", "checklist", "local", "timeout", "FAIL", 72.0, "{}", at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Save(ctx, &analyst.Analysis{
		ID: "a1", SessionID: "s1", Variant: "checklist", Mode: analyst.ModeLocal,
		Reason: "timeout", Verdict: "FAIL", Score: 72, CreatedAt: at,
	}))

	cols := []string{"id", "session_id", "variant", "mode", "reason", "verdict", "score", "result_json", "created_at"}
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs("s1", 20, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("a2", "s1", "checklist", "remote", "-", "PASS", 100.0, "{}", at.Add(time.Hour)).
			AddRow("a1", "s1", "checklist", "local", "timeout", "FAIL", 72.0, "{}", at))
	list, err := repo.Paginate(ctx, "s1", 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, analyst.ModeRemote, list[0].Mode)
	assert.Empty(t, list[0].Reason)
	assert.Equal(t, "timeout", list[1].Reason)

	mock.ExpectQuery("SELECT id, session_id").
		WithArgs("s9").
		WillReturnRows(sqlmock.NewRows(cols))
	latest, err := repo.Latest(ctx, "s9")
	require.NoError(t, err)
	assert.Nil(t, latest)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(Schema)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "assessment_snapshots")
	assert.Contains(t, stmts[1], "assessment_analyses")
}

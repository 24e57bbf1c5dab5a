package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/automaton-ready/internal/domain/analyst"
	"github.com/bryanwahyu/automaton-ready/internal/domain/session"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	s := openInMemory(t)

	_, err := s.Get(ctx, "checklist:a")
	assert.ErrorIs(t, err, session.ErrSnapshotNotFound)

	require.NoError(t, s.Put(ctx, "checklist:a", []byte(`{"version":"1.1"}`)))
	require.NoError(t, s.Put(ctx, "framework:a", []byte(`{}`)))
	got, err := s.Get(ctx, "checklist:a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.1"}`, string(got))

	require.NoError(t, s.Delete(ctx, "checklist:a"))
	_, err = s.Get(ctx, "checklist:a")
	assert.ErrorIs(t, err, session.ErrSnapshotNotFound)
	_, err = s.Get(ctx, "framework:a")
	assert.NoError(t, err, "keys are scoped per variant")
}

func TestAnalyses_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openInMemory(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a1", "a2", "a3"} {
		require.NoError(t, s.Save(ctx, &analyst.Analysis{
			ID:        analyst.AnalysisID(id),
			SessionID: "s1",
			Mode:      analyst.ModeLocal,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.Save(ctx, &analyst.Analysis{ID: "other", SessionID: "s2", CreatedAt: base}))

	page, err := s.Paginate(ctx, "s1", 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, analyst.AnalysisID("a3"), page[0].ID)
	assert.Equal(t, analyst.AnalysisID("a2"), page[1].ID)

	page, err = s.Paginate(ctx, "s1", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, analyst.AnalysisID("a1"), page[0].ID)

	latest, err := s.Latest(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, analyst.AnalysisID("a3"), latest.ID)

	none, err := s.Latest(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, none)
}

package records

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/doorway/game/service"
)

func openTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.db")
	store, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestSQLiteStore_RecordAndList(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, moves := range []int{7, 3, 5} {
		id, err := store.RecordCompletion(ctx, service.CompletionRecord{
			LevelID:     "corridor",
			SessionID:   "ab12",
			Moves:       moves,
			TotalMoves:  moves + 2,
			CompletedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
	}
	_, err := store.RecordCompletion(ctx, service.CompletionRecord{LevelID: "doors", SessionID: "cd34", Moves: 9})
	require.NoError(t, err)

	recs, err := store.ListCompletions(ctx, "corridor", 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []int{3, 5, 7}, []int{recs[0].Moves, recs[1].Moves, recs[2].Moves})
	assert.Equal(t, 5, recs[0].TotalMoves)
	assert.True(t, recs[0].CompletedAt.Equal(base.Add(time.Minute)))

	recs, err = store.ListCompletions(ctx, "corridor", 2)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = store.ListCompletions(ctx, "unknown", 5)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.NotNil(t, recs)
}

func TestSQLiteStore_Best(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	_, err := store.Best(ctx, "corridor")
	assert.ErrorIs(t, err, ErrNoRecords)

	for _, rec := range []service.CompletionRecord{
		{LevelID: "corridor", SessionID: "a", Moves: 4},
		{LevelID: "corridor", SessionID: "b", Moves: 2},
		{LevelID: "doors", SessionID: "c", Moves: 6},
	} {
		_, err := store.RecordCompletion(ctx, rec)
		require.NoError(t, err)
	}

	best, err := store.Best(ctx, "corridor")
	require.NoError(t, err)
	assert.Equal(t, "b", best.SessionID)

	all, err := store.BestPerLevel(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "corridor", all[0].LevelID)
	assert.Equal(t, 2, all[0].Moves)
	assert.Equal(t, "doors", all[1].LevelID)
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	store, path := openTestStore(t)

	_, err := store.RecordCompletion(ctx, service.CompletionRecord{LevelID: "corridor", SessionID: "ab12", Moves: 2})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var (
		level string
		moves int
	)
	row := db.QueryRow(`SELECT level_id, moves FROM completions WHERE session_id='ab12'`)
	require.NoError(t, row.Scan(&level, &moves))
	assert.Equal(t, "corridor", level)
	assert.Equal(t, 2, moves)
}

func TestSQLiteStore_Errors(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)

	store, _ := openTestStore(t)
	_, err = store.RecordCompletion(context.Background(), service.CompletionRecord{})
	assert.Error(t, err)
}

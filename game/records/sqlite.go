// Package records stores level completions in SQLite.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/doorway/game/service"
)

// ErrNoRecords is returned by Best when a level has never been completed
var ErrNoRecords = errors.New("no records")

// DefaultListLimit applies when ListCompletions is called without a limit
const DefaultListLimit = 10

// SQLiteStore implements service.RecordStore
type SQLiteStore struct {
	db *sql.DB
}

var _ service.RecordStore = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the records database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS completions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			moves INTEGER NOT NULL,
			total_moves INTEGER NOT NULL,
			completed_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS completions_level ON completions(level_id, moves);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordCompletion stores rec and returns its row ID
func (s *SQLiteStore) RecordCompletion(ctx context.Context, rec service.CompletionRecord) (int64, error) {
	if rec.LevelID == "" {
		return 0, fmt.Errorf("completion without level id")
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO completions(level_id, session_id, moves, total_moves, completed_at) VALUES(?,?,?,?,?)`,
		rec.LevelID, rec.SessionID, rec.Moves, rec.TotalMoves, rec.CompletedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to record completion: %w", err)
	}
	return res.LastInsertId()
}

// ListCompletions returns the completions of a level, fewest moves first
func (s *SQLiteStore) ListCompletions(ctx context.Context, levelID string, limit int) ([]*service.CompletionRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, level_id, session_id, moves, total_moves, completed_at FROM completions
		 WHERE level_id = ? ORDER BY moves ASC, completed_at ASC LIMIT ?`, levelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	return scanRecords(rows)
}

// Best returns the fewest-moves completion of a level
func (s *SQLiteStore) Best(ctx context.Context, levelID string) (*service.CompletionRecord, error) {
	recs, err := s.ListCompletions(ctx, levelID, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	return recs[0], nil
}

// BestPerLevel returns the best completion of every completed level, ordered by level id
func (s *SQLiteStore) BestPerLevel(ctx context.Context) ([]*service.CompletionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.level_id, c.session_id, c.moves, c.total_moves, c.completed_at FROM completions c
		 WHERE c.id = (SELECT id FROM completions WHERE level_id = c.level_id ORDER BY moves ASC, completed_at ASC LIMIT 1)
		 ORDER BY c.level_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list best completions: %w", err)
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]*service.CompletionRecord, error) {
	defer rows.Close()

	out := []*service.CompletionRecord{}
	for rows.Next() {
		var (
			rec         service.CompletionRecord
			completedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.LevelID, &rec.SessionID, &rec.Moves, &rec.TotalMoves, &completedAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, completedAt)
		if err != nil {
			return nil, fmt.Errorf("bad completed_at %q: %w", completedAt, err)
		}
		rec.CompletedAt = t
		out = append(out, &rec)
	}
	return out, rows.Err()
}

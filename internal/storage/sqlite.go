// Package storage provides SQLite-based persistence for finished Card Flip runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const sqliteTime = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for run history.
type Store struct {
	db *sql.DB
}

// Run is one completed session.
type Run struct {
	ID         int64
	SessionID  uuid.UUID
	RoomID     string // Empty when the run was not reported
	FinishTime int    // Seconds
	Score      int
	Rank       int // Rank in room, 0 when unknown
	CreatedAt  time.Time
}

// Stats contains aggregated statistics over all saved runs.
type Stats struct {
	Runs       int
	BestTime   int
	BestScore  int
	AvgTime    float64
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := expandHome(dbPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

func expandHome(p string) (string, error) {
	if p == "" || p[0] != '~' {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL UNIQUE,
			room_id TEXT NOT NULL DEFAULT '',
			finish_time INTEGER NOT NULL,
			score INTEGER NOT NULL,
			rank_in_room INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_best ON runs(finish_time ASC, score DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run. A zero SessionID gets a fresh one.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(r Run) (int64, error) {
	if r.SessionID == uuid.Nil {
		r.SessionID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	result, err := s.db.Exec(
		`INSERT INTO runs (session_id, room_id, finish_time, score, rank_in_room, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.SessionID.String(), r.RoomID, r.FinishTime, r.Score, r.Rank,
		r.CreatedAt.UTC().Format(sqliteTime),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// SetRank records the server-assigned rank for a run once the lobby replies.
func (s *Store) SetRank(sessionID uuid.UUID, rank int) error {
	_, err := s.db.Exec("UPDATE runs SET rank_in_room = ? WHERE session_id = ?", rank, sessionID.String())
	if err != nil {
		return fmt.Errorf("storage: cannot update rank: %w", err)
	}
	return nil
}

// BestRuns returns the fastest runs, ties broken by score.
func (s *Store) BestRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryRuns(
		`SELECT id, session_id, room_id, finish_time, score, rank_in_room, created_at
		 FROM runs
		 ORDER BY finish_time ASC, score DESC, id ASC
		 LIMIT ?`,
		limit,
	)
}

// RecentRuns returns the most recently saved runs.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryRuns(
		`SELECT id, session_id, room_id, finish_time, score, rank_in_room, created_at
		 FROM runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
}

func (s *Store) queryRuns(query string, args ...any) ([]Run, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			sessionID string
			createdAt any
		)
		if err := rows.Scan(&r.ID, &sessionID, &r.RoomID, &r.FinishTime, &r.Score, &r.Rank, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if r.SessionID, err = uuid.Parse(sessionID); err != nil {
			return nil, fmt.Errorf("storage: bad session id %q: %w", sessionID, err)
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// Stats aggregates all saved runs. Zero values mean nothing was saved yet.
func (s *Store) Stats() (Stats, error) {
	var (
		st         Stats
		lastPlayed any
	)
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MIN(finish_time), 0), COALESCE(MAX(score), 0),
		        COALESCE(AVG(finish_time), 0), MAX(created_at)
		 FROM runs`,
	).Scan(&st.Runs, &st.BestTime, &st.BestScore, &st.AvgTime, &lastPlayed)
	if err != nil {
		return Stats{}, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	st.LastPlayed = parseTime(lastPlayed)
	return st, nil
}

// RunBySession returns the run saved for sessionID.
func (s *Store) RunBySession(sessionID uuid.UUID) (Run, error) {
	runs, err := s.queryRuns(
		`SELECT id, session_id, room_id, finish_time, score, rank_in_room, created_at
		 FROM runs WHERE session_id = ?`,
		sessionID.String(),
	)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, ErrNotFound
	}
	return runs[0], nil
}

// ErrNotFound is returned when a lookup matches no run.
var ErrNotFound = errors.New("storage: run not found")

// ClearRuns deletes all saved runs.
func (s *Store) ClearRuns() error {
	if _, err := s.db.Exec("DELETE FROM runs"); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and string datetime columns.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(sqliteTime, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

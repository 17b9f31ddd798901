package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/RyanBlaney/sonido-reverso/logging"
	"github.com/RyanBlaney/sonido-reverso/scoring/config"
)

// ErrNoDifficulty is returned when no difficulty has been saved yet
var ErrNoDifficulty = errors.New("no difficulty stored")

const difficultyKey = "difficulty"

// Attempt is one scored attempt as kept in the history table
type Attempt struct {
	ID         int64             `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	Difficulty config.Difficulty `json:"difficulty"`
	Direction  config.Direction  `json:"direction"`
	Mode       config.VocalMode  `json:"mode"`
	Outcome    string            `json:"outcome"`
	Score      int               `json:"score"`
	RawScore   float64           `json:"raw_score"`
	IsGarbage  bool              `json:"is_garbage"`
}

// SQLiteStore persists the active difficulty and the attempt history
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// NewSQLiteStore opens (or creates) the database at path and makes sure the
// tables exist. Use ":memory:" for a throwaway store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// One connection, so ":memory:" databases are shared between calls
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	return &SQLiteStore{
		db: db,
		logger: logging.WithFields(logging.Fields{
			"component": "sqlite_store",
			"path":      path,
		}),
	}, nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func createTables(db *sql.DB) error {
	createSettingsTable := `
    CREATE TABLE IF NOT EXISTS settings (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL,
        updated_at INTEGER NOT NULL
    );
    `

	createAttemptsTable := `
    CREATE TABLE IF NOT EXISTS attempts (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        created_at INTEGER NOT NULL,
        difficulty TEXT NOT NULL,
        direction TEXT NOT NULL,
        mode TEXT NOT NULL,
        outcome TEXT NOT NULL,
        score INTEGER NOT NULL,
        raw_score REAL NOT NULL,
        is_garbage INTEGER NOT NULL
    );
    `

	if _, err := db.Exec(createSettingsTable); err != nil {
		return fmt.Errorf("error creating settings table: %w", err)
	}
	if _, err := db.Exec(createAttemptsTable); err != nil {
		return fmt.Errorf("error creating attempts table: %w", err)
	}
	return nil
}

// CurrentDifficulty returns the saved difficulty, or ErrNoDifficulty
func (s *SQLiteStore) CurrentDifficulty(ctx context.Context) (config.Difficulty, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", difficultyKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoDifficulty
	}
	if err != nil {
		return "", fmt.Errorf("failed to read difficulty: %w", err)
	}

	d, err := config.ParseDifficulty(value)
	if err != nil {
		return "", fmt.Errorf("stored difficulty is corrupt: %w", err)
	}
	return d, nil
}

// SaveDifficulty replaces the saved difficulty
func (s *SQLiteStore) SaveDifficulty(ctx context.Context, d config.Difficulty) error {
	if !d.IsValid() {
		return fmt.Errorf("invalid difficulty %q", d)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO settings (key, value, updated_at) VALUES (?, ?, ?)",
		difficultyKey, string(d), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save difficulty: %w", err)
	}

	s.logger.Debug("Difficulty saved", logging.Fields{
		"function":   "SaveDifficulty",
		"difficulty": d,
	})
	return nil
}

// RecordAttempt appends a to the history and returns its ID. A zero
// CreatedAt is stamped with the current time.
func (s *SQLiteStore) RecordAttempt(ctx context.Context, a Attempt) (int64, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (created_at, difficulty, direction, mode, outcome, score, raw_score, is_garbage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.CreatedAt.UnixMilli(), string(a.Difficulty), string(a.Direction), string(a.Mode),
		a.Outcome, a.Score, a.RawScore, a.IsGarbage)
	if err != nil {
		return 0, fmt.Errorf("error recording attempt: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error getting attempt ID: %w", err)
	}
	return id, nil
}

// RecentAttempts returns up to limit attempts, newest first
func (s *SQLiteStore) RecentAttempts(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		return []Attempt{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, difficulty, direction, mode, outcome, score, raw_score, is_garbage
		FROM attempts
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying attempts: %w", err)
	}
	defer rows.Close()

	attempts := []Attempt{}
	for rows.Next() {
		var (
			a         Attempt
			createdAt int64
			diff      string
			dir       string
			mode      string
		)
		if err := rows.Scan(&a.ID, &createdAt, &diff, &dir, &mode, &a.Outcome, &a.Score, &a.RawScore, &a.IsGarbage); err != nil {
			return nil, fmt.Errorf("error scanning attempt: %w", err)
		}
		a.CreatedAt = time.UnixMilli(createdAt)
		a.Difficulty = config.Difficulty(diff)
		a.Direction = config.Direction(dir)
		a.Mode = config.VocalMode(mode)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading attempts: %w", err)
	}

	return attempts, nil
}

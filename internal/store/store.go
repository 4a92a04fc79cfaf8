// Package store holds the append-only attempt log in SQLite. The default DSN
// is ":memory:", so nothing outlives the process; a file path can be given
// for debugging. There are no update or delete statements for attempts:
// append-only by construction.
package store

import (
	"database/sql"
	"fmt"

	"github.com/mkarpov/interview-coach/internal/model"

	_ "modernc.org/sqlite"
)

// MemoryDSN keeps the log in process memory only.
const MemoryDSN = ":memory:"

type Store struct {
	db *sql.DB
}

func New(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	if dsn != MemoryDSN {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// The in-memory database vanishes when its only connection closes.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		role TEXT NOT NULL,
		qtype TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		duration_sec INTEGER NOT NULL DEFAULT 0,
		relevance REAL NOT NULL DEFAULT 0,
		structure REAL NOT NULL DEFAULT 0,
		conciseness REAL NOT NULL DEFAULT 0,
		readability REAL NOT NULL DEFAULT 0,
		tokens_est INTEGER NOT NULL DEFAULT 0,
		final REAL NOT NULL DEFAULT 0,
		filler_penalty REAL NOT NULL DEFAULT 0,
		outline TEXT NOT NULL DEFAULT '',
		llm_feedback TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AppendAttempt records one scoring event. Attempts are immutable once
// written.
func (s *Store) AppendAttempt(a model.Attempt) error {
	_, err := s.db.Exec(
		`INSERT INTO attempts (id, created_at, role, qtype, difficulty, question, answer, duration_sec,
		    relevance, structure, conciseness, readability, tokens_est, final, filler_penalty,
		    outline, llm_feedback)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CreatedAt, a.Role, a.QuestionType, a.Difficulty, a.Question, a.Answer, a.DurationSec,
		a.Scores.Relevance, a.Scores.Structure, a.Scores.Conciseness, a.Scores.Readability,
		a.Scores.TokensEst, a.Scores.Final, a.Scores.FillerPenalty,
		a.Outline, a.LLMFeedback,
	)
	return err
}

// ListAttempts returns all attempts in insertion (chronological) order.
func (s *Store) ListAttempts() ([]model.Attempt, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, role, qtype, difficulty, question, answer, duration_sec,
		    relevance, structure, conciseness, readability, tokens_est, final, filler_penalty,
		    outline, llm_feedback
		 FROM attempts ORDER BY rowid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(
			&a.ID, &a.CreatedAt, &a.Role, &a.QuestionType, &a.Difficulty, &a.Question, &a.Answer, &a.DurationSec,
			&a.Scores.Relevance, &a.Scores.Structure, &a.Scores.Conciseness, &a.Scores.Readability,
			&a.Scores.TokensEst, &a.Scores.Final, &a.Scores.FillerPenalty,
			&a.Outline, &a.LLMFeedback,
		); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// AttemptCount returns the number of recorded attempts.
func (s *Store) AttemptCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM attempts`).Scan(&count)
	return count, err
}

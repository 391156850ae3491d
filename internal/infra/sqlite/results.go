package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aliskhannn/trivia-quiz/internal/domain/entities"
)

const defaultRecentLimit = 20

// ResultStore keeps completed quiz scores in a local SQLite file.
type ResultStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*ResultStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite3 serialises writers anyway.
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS quiz_results (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id   TEXT    NOT NULL,
			frontend     TEXT    NOT NULL,
			score        INTEGER NOT NULL,
			total        INTEGER NOT NULL,
			started_at   INTEGER NOT NULL,
			completed_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create results table: %w", err)
	}

	return &ResultStore{db: db}, nil
}

func (s *ResultStore) Record(ctx context.Context, res *entities.QuizResult) error {
	out, err := s.db.ExecContext(ctx,
		"INSERT INTO quiz_results (session_id, frontend, score, total, started_at, completed_at) VALUES (?, ?, ?, ?, ?, ?)",
		res.SessionID, res.Frontend, res.Score, res.Total,
		res.StartedAt.UnixMilli(), res.CompletedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}

	id, err := out.LastInsertId()
	if err != nil {
		return fmt.Errorf("result id: %w", err)
	}
	res.ID = id
	return nil
}

// Recent returns the latest results, newest first.
func (s *ResultStore) Recent(ctx context.Context, limit int) ([]*entities.QuizResult, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, session_id, frontend, score, total, started_at, completed_at FROM quiz_results ORDER BY completed_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent results: %w", err)
	}
	defer rows.Close()

	var results []*entities.QuizResult
	for rows.Next() {
		var (
			res                  entities.QuizResult
			started, completedAt int64
		)
		if err := rows.Scan(&res.ID, &res.SessionID, &res.Frontend, &res.Score, &res.Total, &started, &completedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.StartedAt = time.UnixMilli(started).UTC()
		res.CompletedAt = time.UnixMilli(completedAt).UTC()
		results = append(results, &res)
	}

	return results, rows.Err()
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}

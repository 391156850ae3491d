package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/trivia-quiz/internal/domain/entities"
	"github.com/aliskhannn/trivia-quiz/internal/infra/postgres"
)

const defaultRecentLimit = 20

// ResultRepository stores completed quiz scores in PostgreSQL.
type ResultRepository struct {
	db postgres.DBTX
	tr *postgres.Transactor
}

// NewResultRepository creates a new ResultRepository. tr may be nil when
// the schema is managed elsewhere.
func NewResultRepository(db postgres.DBTX, tr *postgres.Transactor) *ResultRepository {
	return &ResultRepository{db: db, tr: tr}
}

// Migrate creates the results table and its index in one transaction.
func (r *ResultRepository) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS quiz_results (
			id           BIGSERIAL PRIMARY KEY,
			session_id   TEXT        NOT NULL,
			frontend     TEXT        NOT NULL,
			score        INTEGER     NOT NULL,
			total        INTEGER     NOT NULL,
			started_at   TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS quiz_results_completed_at_idx ON quiz_results (completed_at DESC)`,
	}

	exec := func(ctx context.Context, db postgres.DBTX) error {
		for _, stmt := range stmts {
			if _, err := db.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migrate results: %w", err)
			}
		}
		return nil
	}

	if r.tr == nil {
		return exec(ctx, r.db)
	}
	return r.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return exec(ctx, tx)
	})
}

// Record inserts a completed result and sets its ID.
func (r *ResultRepository) Record(ctx context.Context, res *entities.QuizResult) error {
	query := `
		INSERT INTO quiz_results (session_id, frontend, score, total, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		res.SessionID,
		res.Frontend,
		res.Score,
		res.Total,
		res.StartedAt,
		res.CompletedAt,
	).Scan(&res.ID)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}

	return nil
}

// Recent returns the latest results, newest first.
func (r *ResultRepository) Recent(ctx context.Context, limit int) ([]*entities.QuizResult, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	query := `
		SELECT id, session_id, frontend, score, total, started_at, completed_at
		FROM quiz_results
		ORDER BY completed_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent results: %w", err)
	}
	defer rows.Close()

	results := make([]*entities.QuizResult, 0, limit)
	for rows.Next() {
		var res entities.QuizResult
		if err := rows.Scan(
			&res.ID,
			&res.SessionID,
			&res.Frontend,
			&res.Score,
			&res.Total,
			&res.StartedAt,
			&res.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}

	return results, nil
}

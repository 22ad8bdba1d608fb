package storage

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/colleagues/internal/models"
)

// PostgresStore implements FactSink using PostgreSQL
type PostgresStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS facts (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		repo_rehash TEXT NOT NULL,
		kind TEXT NOT NULL,
		value TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		author_email TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_facts_repo_author ON facts(repo_rehash, author_email);

	CREATE TABLE IF NOT EXISTS fact_batches (
		batch_id TEXT PRIMARY KEY,
		fact_count INTEGER NOT NULL,
		posted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

// NewPostgresStore creates a new PostgreSQL storage
func NewPostgresStore(ctx context.Context, dsn string, logger *logrus.Logger) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// One run posts one batch; a small pool is plenty
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &PostgresStore{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// PostFacts upserts the batch in one transaction
func (s *PostgresStore) PostFacts(ctx context.Context, batchID string, facts []models.Fact) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO facts (id, batch_id, repo_rehash, kind, value, score, author_email, created_at)
		VALUES (:id, :batch_id, :repo_rehash, :kind, :value, :score, :author_email, :created_at)
		ON CONFLICT (id) DO UPDATE SET
			score = EXCLUDED.score,
			batch_id = EXCLUDED.batch_id,
			created_at = EXCLUDED.created_at
	`
	for _, f := range facts {
		if _, err := tx.NamedExecContext(ctx, query, f); err != nil {
			return fmt.Errorf("save fact %s: %w", f.ID, err)
		}
	}

	if batchID != "" {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO fact_batches (batch_id, fact_count) VALUES ($1, $2)
			ON CONFLICT (batch_id) DO UPDATE SET fact_count = EXCLUDED.fact_count`,
			batchID, len(facts)); err != nil {
			return fmt.Errorf("record batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit facts: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"batch": batchID, "facts": len(facts)}).Debug("Stored facts in postgres")
	return nil
}

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/colleagues/internal/models"
)

// SQLiteStore implements FactSink using SQLite (for local/development)
type SQLiteStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewSQLiteStore creates a new SQLite storage
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	db.Exec("PRAGMA journal_mode = WAL")

	store := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS facts (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		repo_rehash TEXT NOT NULL,
		kind TEXT NOT NULL,
		value TEXT NOT NULL,
		score REAL NOT NULL,
		author_email TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS fact_batches (
		batch_id TEXT PRIMARY KEY,
		fact_count INTEGER NOT NULL,
		posted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_facts_repo_author ON facts(repo_rehash, author_email);
	CREATE INDEX IF NOT EXISTS idx_facts_batch ON facts(batch_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// PostFacts stores the batch and its fact_batches row in one transaction. An
// empty batch still records its ID with a zero fact_count.
func (s *SQLiteStore) PostFacts(ctx context.Context, batchID string, facts []models.Fact) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR REPLACE INTO facts
		(id, batch_id, repo_rehash, kind, value, score, author_email, created_at)
		VALUES (:id, :batch_id, :repo_rehash, :kind, :value, :score, :author_email, :created_at)
	`
	for _, f := range facts {
		if _, err := tx.NamedExecContext(ctx, query, f); err != nil {
			return fmt.Errorf("insert fact %s: %w", f.ID, err)
		}
	}

	if batchID != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO fact_batches (batch_id, fact_count) VALUES (?, ?)`,
			batchID, len(facts)); err != nil {
			return fmt.Errorf("record batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit facts: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"batch": batchID, "facts": len(facts)}).Debug("Stored facts in sqlite")
	return nil
}

// ListFacts returns stored facts for a repository, highest score first
func (s *SQLiteStore) ListFacts(ctx context.Context, repoRehash string) ([]models.Fact, error) {
	var facts []models.Fact
	query := `SELECT * FROM facts WHERE repo_rehash = ? ORDER BY score DESC, value`
	if err := s.db.SelectContext(ctx, &facts, query, repoRehash); err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	return facts, nil
}

// BatchFactCount returns the fact_count recorded for batchID
func (s *SQLiteStore) BatchFactCount(ctx context.Context, batchID string) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT fact_count FROM fact_batches WHERE batch_id = ?`, batchID); err != nil {
		return 0, fmt.Errorf("batch %s: %w", batchID, err)
	}
	return n, nil
}

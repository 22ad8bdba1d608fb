package storage

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/colleagues/internal/config"
	cerrors "github.com/rohankatakam/colleagues/internal/errors"
	"github.com/rohankatakam/colleagues/internal/models"
)

// FactSink is the reporting interface scored facts are handed to. PostFacts
// receives one complete batch per run, possibly empty, together with the
// batch ID every fact in it carries, and reports delivery failures to the
// caller without retrying.
type FactSink interface {
	PostFacts(ctx context.Context, batchID string, facts []models.Fact) error
	Close() error
}

// Open builds the sink selected by cfg.Sink.Type. stdout is used for the
// stdout sink and may be nil (defaults to os.Stdout).
func Open(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *logrus.Logger) (FactSink, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if stdout == nil {
		stdout = os.Stdout
	}

	s := cfg.Sink
	switch s.Type {
	case "", "stdout":
		return NewWriterSink(stdout, s.Format), nil
	case "sqlite":
		return NewSQLiteStore(s.Path, logger)
	case "postgres":
		return NewPostgresStore(ctx, s.DSN, logger)
	case "bolt":
		return NewBoltStore(s.Path, logger)
	case "redis":
		return NewRedisSink(ctx, s.Redis, logger)
	case "neo4j":
		return NewNeo4jSink(ctx, s.Neo4j, logger)
	case "http":
		token, source := config.NewKeyringManager(logger).ResolveAPIToken(cfg)
		logger.WithField("token_source", source).Debug("Resolved API token")
		return NewHTTPSink(s.HTTP, token, logger), nil
	default:
		return nil, cerrors.InternalErrorf("unknown sink type %q", s.Type)
	}
}

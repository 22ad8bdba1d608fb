package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/colleagues/internal/config"
	"github.com/rohankatakam/colleagues/internal/models"
)

// colleagueEdgeQuery merges one COLLEAGUE edge per fact. Re-posting a run
// for the same repository overwrites the score instead of duplicating edges.
const colleagueEdgeQuery = `
UNWIND $facts AS f
MERGE (a:Developer {email: f.author})
MERGE (c:Developer {email: f.colleague})
MERGE (a)-[r:COLLEAGUE {repo: f.repo}]->(c)
SET r.score = f.score, r.batch = f.batch, r.updated_at = f.created_at
`

// Neo4jSink records colleague scores as edges between Developer nodes
type Neo4jSink struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *logrus.Logger
}

// NewNeo4jSink creates the driver and verifies connectivity
func NewNeo4jSink(ctx context.Context, cfg config.Neo4jConfig, logger *logrus.Logger) (*Neo4jSink, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to Neo4j: %w", err)
	}

	return &Neo4jSink{driver: driver, database: cfg.Database, logger: logger}, nil
}

// Close closes the driver
func (s *Neo4jSink) Close() error {
	return s.driver.Close(context.Background())
}

// PostFacts writes the whole batch in one write transaction
func (s *Neo4jSink) PostFacts(ctx context.Context, batchID string, facts []models.Fact) error {
	if len(facts) == 0 {
		return nil
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	params := colleagueEdgeParams(facts)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, colleagueEdgeQuery, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("write colleague edges: %w", err)
	}

	s.logger.WithField("edges", len(facts)).Debug("Merged colleague edges into neo4j")
	return nil
}

// colleagueEdgeParams flattens facts into UNWIND parameters
func colleagueEdgeParams(facts []models.Fact) map[string]any {
	rows := make([]any, 0, len(facts))
	for _, f := range facts {
		if f.Kind != models.FactKindColleague {
			continue
		}
		rows = append(rows, map[string]any{
			"author":     f.AuthorEmail,
			"colleague":  f.Value,
			"repo":       f.RepoRehash,
			"score":      f.Score,
			"batch":      f.BatchID,
			"created_at": f.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return map[string]any{"facts": rows}
}

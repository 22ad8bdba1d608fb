package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/rohankatakam/colleagues/internal/models"
)

const (
	factsBucket   = "facts"
	batchesBucket = "batches"
)

// BoltStore is a local outbox: facts are written to a bbolt file for a
// separate shipper to deliver.
type BoltStore struct {
	db     *bolt.DB
	logger *logrus.Logger
}

// NewBoltStore opens (or creates) the outbox at path
func NewBoltStore(path string, logger *logrus.Logger) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create outbox directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt outbox: %w", err)
	}

	return &BoltStore{db: db, logger: logger}, nil
}

// Close closes the outbox file
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// PostFacts writes every fact keyed by ID plus a batch index entry, atomically
func (s *BoltStore) PostFacts(ctx context.Context, batchID string, facts []models.Fact) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(factsBucket))
		if err != nil {
			return err
		}
		batches, err := tx.CreateBucketIfNotExists([]byte(batchesBucket))
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(facts))
		for _, f := range facts {
			data, err := json.Marshal(f)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(f.ID), data); err != nil {
				return err
			}
			ids = append(ids, f.ID)
		}

		if batchID != "" {
			data, err := json.Marshal(ids)
			if err != nil {
				return err
			}
			return batches.Put([]byte(batchID), data)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write facts to outbox: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"batch": batchID, "facts": len(facts)}).Debug("Stored facts in bolt outbox")
	return nil
}

// Facts returns every fact in the outbox, in key order
func (s *BoltStore) Facts() ([]models.Fact, error) {
	var facts []models.Fact
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(factsBucket))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			var f models.Fact
			if err := json.Unmarshal(v, &f); err != nil {
				return err
			}
			facts = append(facts, f)
			return nil
		})
	})
	return facts, err
}

// Batch returns the fact IDs recorded for batchID
func (s *BoltStore) Batch(batchID string) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(batchesBucket))
		if bucket == nil {
			return bolt.ErrBucketNotFound
		}
		data := bucket.Get([]byte(batchID))
		if data == nil {
			return fmt.Errorf("batch %s not found", batchID)
		}
		return json.Unmarshal(data, &ids)
	})
	return ids, err
}

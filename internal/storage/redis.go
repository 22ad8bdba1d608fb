package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/colleagues/internal/config"
	"github.com/rohankatakam/colleagues/internal/models"
)

// RedisSink pushes facts as JSON onto a Redis list for a downstream consumer
type RedisSink struct {
	client *redis.Client
	key    string
	logger *logrus.Logger
}

// NewRedisSink connects to Redis and verifies connectivity (fail fast)
func NewRedisSink(ctx context.Context, cfg config.RedisConfig, logger *logrus.Logger) (*RedisSink, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address missing")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password, // Empty string if no password
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.WithField("addr", cfg.Addr).Debug("Redis sink connected")
	return &RedisSink{client: client, key: cfg.Key, logger: logger}, nil
}

// Close closes the Redis client connection
func (s *RedisSink) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	return nil
}

// PostFacts appends every fact to the list in a single MULTI/EXEC round trip
func (s *RedisSink) PostFacts(ctx context.Context, batchID string, facts []models.Fact) error {
	if len(facts) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(facts))
	for _, f := range facts {
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal fact %s: %w", f.ID, err)
		}
		values = append(values, data)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.key, values...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("push facts to %s: %w", s.key, err)
	}

	s.logger.WithFields(logrus.Fields{"facts": len(facts), "key": s.key}).Debug("Pushed facts to redis")
	return nil
}

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/rohankatakam/colleagues/internal/config"
	"github.com/rohankatakam/colleagues/internal/models"
)

// HTTPSink posts facts to a remote analytics API as JSON
type HTTPSink struct {
	client    *http.Client
	url       string
	token     string
	batchSize int
	limiter   *rate.Limiter
	logger    *logrus.Logger
}

type factsRequest struct {
	Facts []models.Fact `json:"facts"`
}

// NewHTTPSink creates a sink posting to cfg.URL. Requests are chunked into
// cfg.BatchSize facts and paced at cfg.RPS requests per second when positive.
func NewHTTPSink(cfg config.HTTPConfig, token string, logger *logrus.Logger) *HTTPSink {
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	return &HTTPSink{
		client:    &http.Client{Timeout: cfg.Timeout},
		url:       cfg.URL,
		token:     token,
		batchSize: batchSize,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
	}
}

// Close is a no-op; the sink holds no connections of its own
func (s *HTTPSink) Close() error {
	return nil
}

// PostFacts sends the batch. An empty batch is still posted so the API sees
// the run. The first failed request aborts the remaining chunks.
func (s *HTTPSink) PostFacts(ctx context.Context, batchID string, facts []models.Fact) error {
	if len(facts) == 0 {
		return s.post(ctx, []models.Fact{})
	}

	for start := 0; start < len(facts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(facts) {
			end = len(facts)
		}
		if err := s.post(ctx, facts[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *HTTPSink) post(ctx context.Context, chunk []models.Fact) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(factsRequest{Facts: chunk})
	if err != nil {
		return fmt.Errorf("marshal facts: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post facts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("post facts: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	s.logger.WithFields(logrus.Fields{"facts": len(chunk), "status": resp.StatusCode}).Debug("Posted facts")
	return nil
}

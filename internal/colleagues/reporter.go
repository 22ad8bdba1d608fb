package colleagues

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	cerrors "github.com/rohankatakam/colleagues/internal/errors"
	"github.com/rohankatakam/colleagues/internal/models"
	"github.com/rohankatakam/colleagues/internal/storage"
)

// RepoRehash derives an anonymised repository id from its root commit
func RepoRehash(rootCommit string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(rootCommit)))
	return hex.EncodeToString(sum[:])
}

// Reporter turns a collaboration tally into facts and hands them to a sink
type Reporter struct {
	agg    *Aggregator
	sink   storage.FactSink
	logger *logrus.Logger
	now    func() time.Time
}

// NewReporter creates a reporter posting to sink
func NewReporter(agg *Aggregator, sink storage.FactSink, logger *logrus.Logger) *Reporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Reporter{agg: agg, sink: sink, logger: logger, now: time.Now}
}

// Report scores the repository and posts one batch of colleague facts.
// The subject's own aliases never appear in the batch. On a sink failure
// nothing is returned and the error carries ErrorTypeSink.
func (r *Reporter) Report(ctx context.Context, repo models.Repo, p Params) (Tally, error) {
	tally, err := r.agg.Collaborations(ctx, p)
	if err != nil {
		return nil, err
	}

	tally = tally.Without(p.Subject)
	batchID := uuid.NewString()
	facts := r.facts(batchID, repo, p.Subject.Primary(), tally)

	if err := r.sink.PostFacts(ctx, batchID, facts); err != nil {
		return nil, cerrors.SinkErrorf(err, "post %d colleague facts", len(facts)).
			WithContext("repo", repo.Rehash)
	}

	r.logger.WithFields(logrus.Fields{
		"repo":  repo.Rehash,
		"batch": batchID,
		"facts": len(facts),
	}).Info("Reported colleague facts")
	return tally, nil
}

func (r *Reporter) facts(batchID string, repo models.Repo, author string, tally Tally) []models.Fact {
	createdAt := r.now().UTC()

	entries := tally.Sorted()
	facts := make([]models.Fact, 0, len(entries))
	for _, e := range entries {
		facts = append(facts, models.Fact{
			ID:          uuid.NewString(),
			BatchID:     batchID,
			RepoRehash:  repo.Rehash,
			Kind:        models.FactKindColleague,
			Value:       e.Email,
			Score:       float64(e.Count),
			AuthorEmail: author,
			CreatedAt:   createdAt,
		})
	}
	return facts
}

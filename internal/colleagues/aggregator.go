package colleagues

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	cerrors "github.com/rohankatakam/colleagues/internal/errors"
	"github.com/rohankatakam/colleagues/internal/git"
)

// Params are the operational inputs of one scoring run
type Params struct {
	Candidates Identity      // colleagues being scored
	Subject    Identity      // aliases of the person being measured
	Window     time.Duration // zero means DefaultFreshnessWindow
}

func (p Params) window() time.Duration {
	if p.Window <= 0 {
		return DefaultFreshnessWindow
	}
	return p.Window
}

// Validate checks that the run has something to measure
func (p Params) Validate() error {
	if p.Subject.Len() == 0 {
		return cerrors.ValidationErrorf("at least one subject email is required")
	}
	if p.Window < 0 {
		return cerrors.ValidationErrorf("freshness window must not be negative, got %s", p.Window)
	}
	return nil
}

// DiscoverFiles unions the paths touched by every candidate. The result is
// sorted so runs over an unchanged repository visit files in the same order.
func DiscoverFiles(ctx context.Context, q git.Querier, candidates Identity) ([]string, error) {
	set := make(map[string]struct{})
	for _, email := range candidates.Emails() {
		paths, err := q.FilesTouchedBy(ctx, email)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			set[p] = struct{}{}
		}
	}

	files := make([]string, 0, len(set))
	for p := range set {
		files = append(files, p)
	}
	sort.Strings(files)
	return files, nil
}

// Aggregator drives discovery and per-file scoring across a repository
type Aggregator struct {
	querier git.Querier
	logger  *logrus.Logger
}

// NewAggregator creates an aggregator over q
func NewAggregator(q git.Querier, logger *logrus.Logger) *Aggregator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Aggregator{querier: q, logger: logger}
}

// Collaborations returns candidate email -> total count of the subject's
// recent-provenance deletions across every file any candidate touched.
// Work is sequential; the first tool failure aborts the run.
func (a *Aggregator) Collaborations(ctx context.Context, p Params) (Tally, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	files, err := DiscoverFiles(ctx, a.querier, p.Candidates)
	if err != nil {
		return nil, err
	}

	a.logger.WithFields(logrus.Fields{
		"candidates": p.Candidates.Len(),
		"subject":    p.Subject.Emails(),
		"files":      len(files),
	}).Info("Scoring collaboration")

	total := NewTally(p.Candidates)
	window := p.window()

	for _, path := range files {
		blob, err := a.querier.FileHistory(ctx, path)
		if err != nil {
			return nil, err
		}

		h, err := ParseHistory(blob)
		if err != nil {
			return nil, cerrors.ToolErrorf(err, "parse history of %s", path)
		}

		before := total.Total()
		for _, alias := range p.Subject.Emails() {
			total.Merge(ScoreFile(h, alias, p.Candidates, window))
		}

		a.logger.WithFields(logrus.Fields{
			"file":    path,
			"commits": len(h.Records),
			"counted": total.Total() - before,
		}).Debug("Scored file")
	}

	a.logger.WithField("total", total.Total()).Info("Collaboration scoring complete")
	return total, nil
}

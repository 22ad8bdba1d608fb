package main

import (
	"github.com/spf13/cobra"

	"github.com/rohankatakam/colleagues/internal/colleagues"
	"github.com/rohankatakam/colleagues/internal/config"
	cerrors "github.com/rohankatakam/colleagues/internal/errors"
	"github.com/rohankatakam/colleagues/internal/git"
	"github.com/rohankatakam/colleagues/internal/models"
	"github.com/rohankatakam/colleagues/internal/storage"
)

var (
	scoreRepo       string
	scoreCandidates []string
	scoreSubject    []string
	scoreWindowDays int
	scoreSink       string
	scoreFormat     string
	scoreRepoID     string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score collaboration between a subject and candidate colleagues",
	Long: `Walk the history of every file a candidate touched and count the lines the
subject deleted shortly after a candidate introduced them. One fact per
candidate is posted to the configured sink.

Examples:
  # Score alice against two colleagues, print JSON
  colleagues score --subject alice@example.com \
    --candidates bob@example.com,carol@example.com --format json

  # Several subject aliases, results stored in sqlite
  colleagues score --subject alice@example.com,alice@work.example \
    --candidates bob@example.com --sink sqlite`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.StringVar(&scoreRepo, "repo", "", "path to the git repository (default from config)")
	f.StringSliceVar(&scoreCandidates, "candidates", nil, "candidate colleague emails")
	f.StringSliceVar(&scoreSubject, "subject", nil, "subject email aliases; the first one authors the facts")
	f.IntVar(&scoreWindowDays, "window-days", 0, "freshness window in days (default from config, 120)")
	f.StringVar(&scoreSink, "sink", "", "sink type: stdout, sqlite, postgres, bolt, redis, neo4j, http")
	f.StringVar(&scoreFormat, "format", "", "stdout format: auto, text, json, yaml")
	f.StringVar(&scoreRepoID, "repo-id", "", "repository id reported with facts (default: hash of the root commit)")
}

// applyScoreFlags layers command-line flags over the loaded configuration
func applyScoreFlags(cmd *cobra.Command, c *config.Config) {
	if scoreRepo != "" {
		c.Repo.Path = scoreRepo
	}
	if len(scoreCandidates) > 0 {
		c.Scoring.Candidates = scoreCandidates
	}
	if len(scoreSubject) > 0 {
		c.Scoring.Subject = scoreSubject
	}
	if cmd.Flags().Changed("window-days") {
		c.Scoring.WindowDays = scoreWindowDays
	}
	if scoreSink != "" {
		c.Sink.Type = scoreSink
	}
	if scoreFormat != "" {
		c.Sink.Format = scoreFormat
	}
	if scoreRepoID != "" {
		c.Repo.Rehash = scoreRepoID
	}
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	applyScoreFlags(cmd, cfg)

	cli := git.NewCLI(cfg.Repo.Path, logger.Logger).WithBinary(cfg.Git.Binary)
	if len(cfg.Scoring.Subject) == 0 {
		if email := cli.UserEmail(ctx); email != "" {
			logger.WithField("subject", email).Info("No subject given, using git user.email")
			cfg.Scoring.Subject = []string{email}
		}
	}

	result := cfg.Validate()
	for _, w := range result.Warnings {
		logger.Warn(w)
	}
	if err := result.AsError(); err != nil {
		return err
	}

	if err := cli.Detect(ctx); err != nil {
		return err
	}

	repo := models.Repo{Path: cli.RepoPath(), Rehash: cfg.Repo.Rehash}
	if repo.Rehash == "" {
		root, err := cli.RootCommit(ctx)
		if err != nil {
			return err
		}
		repo.Rehash = colleagues.RepoRehash(root)
	}

	sink, err := storage.Open(ctx, cfg, cmd.OutOrStdout(), logger.Logger)
	if err != nil {
		return cerrors.SinkErrorf(err, "open %s sink", cfg.Sink.Type)
	}
	defer sink.Close()

	reporter := colleagues.NewReporter(colleagues.NewAggregator(cli, logger.Logger), sink, logger.Logger)
	_, err = reporter.Report(ctx, repo, colleagues.Params{
		Candidates: colleagues.NewIdentity(cfg.Scoring.Candidates...),
		Subject:    colleagues.NewIdentity(cfg.Scoring.Subject...),
		Window:     cfg.Window(),
	})
	return err
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/colleagues/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 120, cfg.Scoring.WindowDays)
	assert.Equal(t, 120*24*time.Hour, cfg.Window())
	assert.Equal(t, "stdout", cfg.Sink.Type)
	assert.Equal(t, "git", cfg.Git.Binary)
	assert.Equal(t, 500, cfg.Sink.HTTP.BatchSize)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
repo:
  path: /srv/repo
scoring:
  window_days: 30
  candidates: [a@example.com, b@example.com]
  subject: [me@example.com]
sink:
  type: sqlite
  path: /tmp/facts.db
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("COLLEAGUES_SUBJECT", "me@example.com, me@work.example.com")
	t.Setenv("COLLEAGUES_API_TOKEN", "secret-token")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/repo", cfg.Repo.Path)
	assert.Equal(t, 30, cfg.Scoring.WindowDays)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Scoring.Candidates)
	assert.Equal(t, []string{"me@example.com", "me@work.example.com"}, cfg.Scoring.Subject)
	assert.Equal(t, "sqlite", cfg.Sink.Type)
	assert.Equal(t, "/tmp/facts.db", cfg.Sink.Path)
	assert.Equal(t, "secret-token", cfg.Sink.HTTP.Token)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched defaults survive a partial file
	assert.Equal(t, "colleagues:facts", cfg.Sink.Redis.Key)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b ,"))
	assert.Empty(t, SplitList(""))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "config.yaml")
	cfg := Default()
	cfg.Scoring.Subject = []string{"me@example.com"}
	cfg.Sink.Type = "bolt"

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bolt", loaded.Sink.Type)
	assert.Equal(t, []string{"me@example.com"}, loaded.Scoring.Subject)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid stdout",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing subject",
			mutate:  func(c *Config) { c.Scoring.Subject = nil },
			wantErr: "scoring.subject",
		},
		{
			name:    "non-positive window",
			mutate:  func(c *Config) { c.Scoring.WindowDays = 0 },
			wantErr: "window_days",
		},
		{
			name:    "unknown sink",
			mutate:  func(c *Config) { c.Sink.Type = "kafka" },
			wantErr: `unknown sink.type "kafka"`,
		},
		{
			name:    "postgres without dsn",
			mutate:  func(c *Config) { c.Sink.Type = "postgres"; c.Sink.DSN = "" },
			wantErr: "sink.dsn",
		},
		{
			name:    "http relative url",
			mutate:  func(c *Config) { c.Sink.Type = "http"; c.Sink.HTTP.URL = "/facts" },
			wantErr: "valid absolute URL",
		},
		{
			name:    "bad stdout format",
			mutate:  func(c *Config) { c.Sink.Format = "xml" },
			wantErr: "sink.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Scoring.Subject = []string{"me@example.com"}
			cfg.Scoring.Candidates = []string{"a@example.com"}
			tt.mutate(cfg)

			result := cfg.Validate()
			if tt.wantErr == "" {
				assert.False(t, result.HasErrors(), result.Error())
				assert.NoError(t, result.AsError())
				return
			}
			require.True(t, result.HasErrors())
			assert.Contains(t, result.Error(), tt.wantErr)

			err := result.AsError()
			require.Error(t, err)
			assert.Equal(t, errors.ErrorTypeConfig, errors.GetType(err))
		})
	}
}

func TestValidate_EmptyCandidatesWarns(t *testing.T) {
	cfg := Default()
	cfg.Scoring.Subject = []string{"me@example.com"}

	result := cfg.Validate()
	assert.False(t, result.HasErrors())
	assert.Len(t, result.Warnings, 1)
}

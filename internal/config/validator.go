package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rohankatakam/colleagues/internal/errors"
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err))
	}

	if len(vr.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn))
		}
	}

	return sb.String()
}

// AsError converts a failed result into a config error, or nil when valid
func (vr *ValidationResult) AsError() error {
	if !vr.HasErrors() {
		return nil
	}
	return errors.ConfigErrorf("%s", strings.TrimSpace(vr.Error()))
}

// Validate checks the configuration needed for a scoring run
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	if c.Repo.Path == "" {
		result.AddError("repo.path is required")
	}
	if c.Scoring.WindowDays <= 0 {
		result.AddError("scoring.window_days must be positive, got %d", c.Scoring.WindowDays)
	}
	if len(c.Scoring.Subject) == 0 {
		result.AddError("scoring.subject needs at least one email (--subject)")
	}
	if len(c.Scoring.Candidates) == 0 {
		result.AddWarning("scoring.candidates is empty; every score will be reported as zero")
	}

	c.validateSink(result)
	return result
}

func (c *Config) validateSink(result *ValidationResult) {
	s := c.Sink
	switch s.Type {
	case "stdout":
		switch s.Format {
		case "", "auto", "text", "json", "yaml":
		default:
			result.AddError("sink.format must be one of auto, text, json, yaml; got %q", s.Format)
		}
	case "sqlite", "bolt":
		if s.Path == "" {
			result.AddError("sink.path is required for the %s sink", s.Type)
		}
	case "postgres":
		if s.DSN == "" {
			result.AddError("sink.dsn (or POSTGRES_DSN) is required for the postgres sink")
		}
	case "redis":
		if s.Redis.Addr == "" {
			result.AddError("sink.redis.addr is required for the redis sink")
		}
		if s.Redis.Key == "" {
			result.AddError("sink.redis.key is required for the redis sink")
		}
	case "neo4j":
		if s.Neo4j.URI == "" {
			result.AddError("sink.neo4j.uri is required for the neo4j sink")
		}
		if s.Neo4j.Password == "" {
			result.AddWarning("sink.neo4j.password is empty")
		}
	case "http":
		if s.HTTP.URL == "" {
			result.AddError("sink.http.url is required for the http sink")
		} else if u, err := url.Parse(s.HTTP.URL); err != nil || u.Scheme == "" || u.Host == "" {
			result.AddError("sink.http.url is not a valid absolute URL: %q", s.HTTP.URL)
		}
		if s.HTTP.BatchSize <= 0 {
			result.AddError("sink.http.batch_size must be positive, got %d", s.HTTP.BatchSize)
		}
		if s.HTTP.RPS < 0 {
			result.AddError("sink.http.rps must not be negative")
		}
	default:
		result.AddError("unknown sink.type %q", s.Type)
	}
}

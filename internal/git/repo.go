package git

import (
	"context"
	"fmt"
	"strings"

	cerrors "github.com/rohankatakam/colleagues/internal/errors"
)

// Detect checks that the querier's directory is inside a git working tree
func (c *CLI) Detect(ctx context.Context) error {
	out, err := c.run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return cerrors.ToolError(err, "not a git repository").WithContext("repo", c.repoPath)
	}
	if strings.TrimSpace(out) != "true" {
		return cerrors.ToolError(fmt.Errorf("rev-parse reported %q", strings.TrimSpace(out)), "not inside a work tree").
			WithContext("repo", c.repoPath)
	}
	return nil
}

// UserEmail returns the configured git user email, "" when none is set
func (c *CLI) UserEmail(ctx context.Context) string {
	out, err := c.run(ctx, "config", "user.email")
	if err != nil {
		// git config exits 1 for an unset key
		return ""
	}
	return strings.TrimSpace(out)
}

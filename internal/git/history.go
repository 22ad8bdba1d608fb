package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	cerrors "github.com/rohankatakam/colleagues/internal/errors"
)

// Querier is the version-control query surface the scoring core depends on.
type Querier interface {
	// FilesTouchedBy lists the distinct paths touched by non-merge commits
	// authored by email.
	FilesTouchedBy(ctx context.Context, email string) ([]string, error)

	// FileHistory returns the full patch history of path, following renames,
	// newest commit first with ISO dates.
	FileHistory(ctx context.Context, path string) (string, error)

	// RootCommit returns the id of the first root commit reachable from HEAD.
	RootCommit(ctx context.Context) (string, error)
}

// CLI implements Querier by running the git binary against a working tree.
// Calls are synchronous; each process runs to completion before its output
// is returned.
type CLI struct {
	repoPath string
	binary   string
	logger   *logrus.Logger

	// toplevel caches rev-parse --show-toplevel; --name-only paths are
	// relative to it, not to repoPath.
	toplevel string
}

// NewCLI creates a CLI querier anchored at repoPath
func NewCLI(repoPath string, logger *logrus.Logger) *CLI {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CLI{repoPath: repoPath, binary: "git", logger: logger}
}

// WithBinary overrides the git executable (path or name on $PATH)
func (c *CLI) WithBinary(binary string) *CLI {
	if binary != "" {
		c.binary = binary
	}
	return c
}

// RepoPath returns the working directory the querier runs in
func (c *CLI) RepoPath() string {
	return c.repoPath
}

// FilesTouchedBy runs:
//
//	git log --no-merges --fixed-strings --author=<email> --name-only -z --pretty=format:
//
// --author is matched as a fixed string against "Name <email>", so the email is
// wrapped in angle brackets to keep the match exact. Paths come back
// NUL-terminated and unquoted, relative to the top of the work tree.
func (c *CLI) FilesTouchedBy(ctx context.Context, email string) ([]string, error) {
	out, err := c.run(ctx,
		"log", "--no-merges", "--no-color", "--fixed-strings",
		"--author=<"+email+">",
		"--name-only", "-z", "--pretty=format:")
	if err != nil {
		return nil, cerrors.ToolErrorf(err, "list files touched by %s", email).
			WithContext("repo", c.repoPath)
	}

	return parseNameOnly(out), nil
}

// FileHistory runs git log -p -M --follow --date=iso -- <path> from the top
// of the work tree, so path is taken as FilesTouchedBy reports it. The header
// format is pinned so log.abbrevCommit or a custom format.pretty in the
// user's config cannot change it.
func (c *CLI) FileHistory(ctx context.Context, path string) (string, error) {
	top, err := c.workTree(ctx)
	if err != nil {
		return "", cerrors.ToolErrorf(err, "resolve work tree for file %s", path).
			WithContext("repo", c.repoPath)
	}

	out, err := c.runIn(ctx, top,
		"--literal-pathspecs",
		"log", "-p", "-M", "--follow", "--no-color", "--no-decorate", "--no-ext-diff",
		"--no-abbrev-commit", "--pretty=medium", "--no-show-signature",
		"--date=iso", "--", path)
	if err != nil {
		return "", cerrors.ToolErrorf(err, "git log --follow failed for file %s", path).
			WithContext("repo", c.repoPath)
	}
	return out, nil
}

// RootCommit runs git rev-list --max-parents=0 HEAD and returns the first id
func (c *CLI) RootCommit(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-list", "--max-parents=0", "HEAD")
	if err != nil {
		return "", cerrors.ToolError(err, "resolve root commit").WithContext("repo", c.repoPath)
	}

	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", cerrors.ToolError(fmt.Errorf("empty rev-list output"), "resolve root commit").
		WithContext("repo", c.repoPath)
}

// workTree resolves and caches the top-level directory of the work tree
func (c *CLI) workTree(ctx context.Context) (string, error) {
	if c.toplevel != "" {
		return c.toplevel, nil
	}
	out, err := c.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	top := strings.TrimRight(out, "\r\n")
	if top == "" {
		return "", fmt.Errorf("rev-parse --show-toplevel returned nothing")
	}
	c.toplevel = top
	return top, nil
}

func (c *CLI) run(ctx context.Context, args ...string) (string, error) {
	return c.runIn(ctx, c.repoPath, args...)
}

func (c *CLI) runIn(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.logger.WithField("args", args).Debug("running git")

	output, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w (stderr: %s)", err, msg)
		}
		return "", err
	}
	return string(output), nil
}

// parseNameOnly turns --name-only -z output into distinct paths, in
// first-seen order. Each commit's list is preceded by the (empty) pretty
// line, which leaves a newline in front of its first path.
func parseNameOnly(output string) []string {
	seen := make(map[string]bool)
	var paths []string

	for _, field := range strings.Split(output, "\x00") {
		path := strings.TrimLeft(field, "\n")
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		paths = append(paths, path)
	}

	return paths
}

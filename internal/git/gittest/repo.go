// Package gittest builds throwaway git repositories for tests.
package gittest

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Repo is a scratch repository rooted in a test temp dir
type Repo struct {
	t    testing.TB
	Path string
}

// New initialises an empty repository, skipping the test when git is missing
func New(t testing.TB) *Repo {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	r := &Repo{t: t, Path: t.TempDir()}
	r.git(nil, "init", "-q")
	r.git(nil, "config", "user.email", "test@example.com")
	r.git(nil, "config", "user.name", "Test User")
	r.git(nil, "config", "commit.gpgsign", "false")
	return r
}

// WriteLines replaces the contents of name with lines
func (r *Repo) WriteLines(name string, lines ...string) {
	r.t.Helper()

	full := filepath.Join(r.Path, name)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		r.t.Fatal(err)
	}
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		r.t.Fatal(err)
	}
}

// Config sets a repository-local git config value
func (r *Repo) Config(key, value string) {
	r.t.Helper()
	r.git(nil, "config", key, value)
}

// Move renames a tracked file
func (r *Repo) Move(from, to string) {
	r.t.Helper()
	r.git(nil, "mv", from, to)
}

// Commit stages everything and commits it as name <email> at when
func (r *Repo) Commit(message, name, email string, when time.Time) {
	r.t.Helper()

	date := when.Format(time.RFC3339)
	env := []string{
		"GIT_AUTHOR_NAME=" + name,
		"GIT_AUTHOR_EMAIL=" + email,
		"GIT_AUTHOR_DATE=" + date,
		"GIT_COMMITTER_NAME=" + name,
		"GIT_COMMITTER_EMAIL=" + email,
		"GIT_COMMITTER_DATE=" + date,
	}
	r.git(nil, "add", "-A")
	r.git(env, "commit", "-q", "--allow-empty", "-m", message)
}

func (r *Repo) git(env []string, args ...string) {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Path
	cmd.Env = append(os.Environ(), env...)
	if out, err := cmd.CombinedOutput(); err != nil {
		r.t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
}

// String implements fmt.Stringer for test failure messages
func (r *Repo) String() string {
	return fmt.Sprintf("gittest.Repo(%s)", r.Path)
}

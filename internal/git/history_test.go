package git

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/rohankatakam/colleagues/internal/errors"
	"github.com/rohankatakam/colleagues/internal/git/gittest"
)

var base = time.Date(2018, 2, 1, 0, 0, 0, 0, time.UTC)

func TestParseNameOnly(t *testing.T) {
	out := "\nsrc/a.go\x00src/b.go\x00\x00\nsrc/a.go\x00with \"quote\".txt\x00tab\there.txt\x00"
	assert.Equal(t, []string{"src/a.go", "src/b.go", `with "quote".txt`, "tab\there.txt"}, parseNameOnly(out))
	assert.Empty(t, parseNameOnly(""))
	assert.Empty(t, parseNameOnly("\n\x00\x00"))
}

func TestFilesTouchedBy(t *testing.T) {
	repo := gittest.New(t)

	repo.WriteLines("a.txt", "alpha")
	repo.Commit("add a", "Alice", "alice@example.com", base)
	repo.WriteLines("b.txt", "beta")
	repo.Commit("add b", "Bob", "bob@example.com", base.Add(time.Hour))
	repo.WriteLines("a.txt", "alpha", "more")
	repo.WriteLines("dir/c.txt", "gamma")
	repo.Commit("touch a and c", "Alice", "alice@example.com", base.Add(2*time.Hour))

	cli := NewCLI(repo.Path, nil)

	files, err := cli.FilesTouchedBy(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "dir/c.txt"}, files)

	files, err = cli.FilesTouchedBy(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, files)
}

func TestFilesTouchedBy_ExactEmail(t *testing.T) {
	repo := gittest.New(t)

	repo.WriteLines("a.txt", "alpha")
	repo.Commit("add a", "Carol", "xbob@example.com", base)

	files, err := NewCLI(repo.Path, nil).FilesTouchedBy(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Empty(t, files, "bob must not match xbob")
}

func TestFilesTouchedBy_UnusualNames(t *testing.T) {
	repo := gittest.New(t)

	repo.WriteLines(`say "hi".txt`, "hello")
	repo.WriteLines("tab\tname.txt", "tabbed")
	repo.WriteLines("héllo wörld.txt", "unicode")
	repo.Commit("odd names", "Alice", "alice@example.com", base)

	cli := NewCLI(repo.Path, nil)
	files, err := cli.FilesTouchedBy(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{`say "hi".txt`, "tab\tname.txt", "héllo wörld.txt"}, files)

	for _, f := range files {
		log, err := cli.FileHistory(context.Background(), f)
		require.NoError(t, err, f)
		assert.Contains(t, log, "Author: Alice <alice@example.com>", f)
	}
}

func TestFileHistory_FromSubdirectory(t *testing.T) {
	repo := gittest.New(t)

	repo.WriteLines("src/a.txt", "alpha")
	repo.WriteLines("top.txt", "top")
	repo.Commit("add", "Alice", "alice@example.com", base)

	cli := NewCLI(filepath.Join(repo.Path, "src"), nil)
	files, err := cli.FilesTouchedBy(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"src/a.txt", "top.txt"}, files)

	added := map[string]string{"src/a.txt": "+alpha", "top.txt": "+top"}
	for _, f := range files {
		log, err := cli.FileHistory(context.Background(), f)
		require.NoError(t, err, f)
		assert.Contains(t, log, added[f], f)
	}
}

func TestFileHistory_IgnoresLogConfig(t *testing.T) {
	repo := gittest.New(t)
	repo.Config("log.abbrevCommit", "true")
	repo.Config("format.pretty", "oneline")
	repo.Config("log.showSignature", "false")

	repo.WriteLines("a.txt", "alpha")
	repo.Commit("add", "Alice", "alice@example.com", base)

	log, err := NewCLI(repo.Path, nil).FileHistory(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^commit [0-9a-f]{40}$`, log)
	assert.Contains(t, log, "Author: Alice <alice@example.com>")
}

func TestFileHistory_FollowsRenames(t *testing.T) {
	repo := gittest.New(t)

	repo.WriteLines("old.txt", "first line", "second line")
	repo.Commit("create", "Alice", "alice@example.com", base)
	repo.Move("old.txt", "new.txt")
	repo.Commit("rename", "Alice", "alice@example.com", base.Add(time.Hour))
	repo.WriteLines("new.txt", "first line")
	repo.Commit("trim", "Bob", "bob@example.com", base.Add(2*time.Hour))

	log, err := NewCLI(repo.Path, nil).FileHistory(context.Background(), "new.txt")
	require.NoError(t, err)

	assert.Contains(t, log, "+first line")
	assert.Contains(t, log, "-second line")
	assert.Contains(t, log, "Author: Alice <alice@example.com>")
	assert.Contains(t, log, "Date:   2018-02-01 00:00:00 +0000")
}

func TestRootCommit(t *testing.T) {
	repo := gittest.New(t)
	repo.WriteLines("a.txt", "alpha")
	repo.Commit("root", "Alice", "alice@example.com", base)
	repo.WriteLines("a.txt", "beta")
	repo.Commit("child", "Alice", "alice@example.com", base.Add(time.Minute))

	root, err := NewCLI(repo.Path, nil).RootCommit(context.Background())
	require.NoError(t, err)
	assert.Len(t, root, 40)
}

func TestCLI_ToolFailure(t *testing.T) {
	cli := NewCLI(t.TempDir(), nil)

	_, err := cli.FileHistory(context.Background(), "missing.txt")
	require.Error(t, err)
	assert.True(t, cerrors.IsToolFailure(err))

	_, err = NewCLI(t.TempDir(), nil).WithBinary("definitely-not-a-git-binary").
		FilesTouchedBy(context.Background(), "a@example.com")
	require.Error(t, err)
	assert.True(t, cerrors.IsToolFailure(err))
}

package colleagues

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/colleagues/internal/git"
	"github.com/rohankatakam/colleagues/internal/git/gittest"
	"github.com/rohankatakam/colleagues/internal/models"
)

func TestScenario_QuickFixAgainstRealRepository(t *testing.T) {
	repo := gittest.New(t)

	repo.WriteLines("src/main.txt", "line1", "line2")
	repo.Commit("add lines", "First Author", author1, t0)
	repo.WriteLines("src/main.txt", "line1")
	repo.Commit("drop line2", "Second Author", author2, t0.Add(time.Minute))
	repo.WriteLines("src/main.txt")
	repo.Commit("drop line1", "First Author", author1, t0.AddDate(1, 0, 0))

	cli := git.NewCLI(repo.Path, quietLogger())
	agg := NewAggregator(cli, quietLogger())
	candidates := NewIdentity(author1, author2)

	tally, err := agg.Collaborations(context.Background(), Params{Candidates: candidates, Subject: NewIdentity(author2)})
	require.NoError(t, err, repo.String())
	assert.Equal(t, Tally{author1: 1, author2: 0}, tally)

	tally, err = agg.Collaborations(context.Background(), Params{Candidates: candidates, Subject: NewIdentity(author1)})
	require.NoError(t, err, repo.String())
	assert.Equal(t, 0, tally[author1], "year-old self deletion is outside the window")

	sink := &recordingSink{}
	root, err := cli.RootCommit(context.Background())
	require.NoError(t, err)
	reporter := NewReporter(agg, sink, quietLogger())

	_, err = reporter.Report(context.Background(), models.Repo{Rehash: RepoRehash(root), Path: repo.Path}, Params{Candidates: candidates, Subject: NewIdentity(author2)})
	require.NoError(t, err)
	require.Len(t, sink.batches, 1)
	require.Len(t, sink.batches[0], 1)
	assert.Equal(t, author1, sink.batches[0][0].Value)
	assert.Equal(t, RepoRehash(root), sink.batches[0][0].RepoRehash)
}

func TestScenario_HistoryFollowsRename(t *testing.T) {
	repo := gittest.New(t)

	repo.WriteLines("old.txt", "carried across the rename", "something else")
	repo.Commit("create", "First Author", author1, t0)
	repo.Move("old.txt", "new.txt")
	repo.Commit("rename", "First Author", author1, t0.Add(time.Hour))
	repo.WriteLines("new.txt", "something else")
	repo.Commit("edit", "Second Author", author2, t0.Add(2*time.Hour))

	agg := NewAggregator(git.NewCLI(repo.Path, quietLogger()), quietLogger())
	tally, err := agg.Collaborations(context.Background(), Params{
		Candidates: NewIdentity(author1, author2),
		Subject:    NewIdentity(author2),
	})
	require.NoError(t, err, repo.String())
	assert.Equal(t, 1, tally[author1])
}

func quickFixRepo(t *testing.T) *gittest.Repo {
	t.Helper()
	repo := gittest.New(t)

	repo.WriteLines("src/main.txt", "line1", "line2")
	repo.Commit("add lines", "First Author", author1, t0)
	repo.WriteLines("src/main.txt", "line1")
	repo.Commit("drop line2", "Second Author", author2, t0.Add(time.Minute))
	return repo
}

func TestScenario_AbbreviatedCommitConfig(t *testing.T) {
	repo := quickFixRepo(t)
	repo.Config("log.abbrevCommit", "true")

	agg := NewAggregator(git.NewCLI(repo.Path, quietLogger()), quietLogger())
	tally, err := agg.Collaborations(context.Background(), Params{
		Candidates: NewIdentity(author1),
		Subject:    NewIdentity(author2),
	})
	require.NoError(t, err, repo.String())
	assert.Equal(t, Tally{author1: 1}, tally)
}

func TestScenario_RepoPathIsSubdirectory(t *testing.T) {
	repo := quickFixRepo(t)

	agg := NewAggregator(git.NewCLI(filepath.Join(repo.Path, "src"), quietLogger()), quietLogger())
	tally, err := agg.Collaborations(context.Background(), Params{
		Candidates: NewIdentity(author1),
		Subject:    NewIdentity(author2),
	})
	require.NoError(t, err, repo.String())
	assert.Equal(t, Tally{author1: 1}, tally)
}

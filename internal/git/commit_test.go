package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	dir := initRepo(t)
	gitRun(t, dir, "checkout", "-b", "feature/ADW-1-x")
	writeCommit(t, dir, "one.txt", "first\n", "ADW-1 add one")
	writeCommit(t, dir, "two.txt", "second\nthird\n", "ADW-1 add two")

	repo, err := Open(dir)
	require.NoError(t, err)

	summary, err := repo.Summarize("master")
	require.NoError(t, err)

	require.Len(t, summary.Commits, 2)
	// Most recent first
	assert.Equal(t, "ADW-1 add two", summary.Commits[0].Subject)
	assert.Equal(t, "ADW-1 add one", summary.Commits[1].Subject)
	assert.Equal(t, []string{"two.txt"}, summary.Commits[0].Paths)
	assert.Len(t, summary.Commits[0].Hash, 7)
	assert.False(t, summary.Commits[0].IsMerge)

	assert.Equal(t, 2, summary.Stats.FilesChanged)
	assert.Equal(t, 3, summary.Stats.Additions)
	assert.Equal(t, 0, summary.Stats.Deletions)
}

func TestSummarizeNothingAhead(t *testing.T) {
	dir := initRepo(t)
	gitRun(t, dir, "checkout", "-b", "feature/ADW-2-y")

	repo, err := Open(dir)
	require.NoError(t, err)

	summary, err := repo.Summarize("master")
	require.NoError(t, err)
	assert.True(t, summary.IsEmpty())
}

func TestSummarizeExcludesTargetCommits(t *testing.T) {
	dir := initRepo(t)
	writeCommit(t, dir, "base.txt", "base\n", "work on master")
	gitRun(t, dir, "checkout", "-b", "feature/ADW-3-z")
	writeCommit(t, dir, "feat.txt", "feat\n", "ADW-3 feature work")

	repo, err := Open(dir)
	require.NoError(t, err)

	summary, err := repo.Summarize("master")
	require.NoError(t, err)

	require.Len(t, summary.Commits, 1)
	assert.Equal(t, "ADW-3 feature work", summary.Commits[0].Subject)
}

func TestSummarizeUnknownTarget(t *testing.T) {
	dir := initRepo(t)

	repo, err := Open(dir)
	require.NoError(t, err)

	_, err = repo.Summarize("no-such-branch")
	var notFound *BranchNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

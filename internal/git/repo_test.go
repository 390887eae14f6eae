package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gitRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return string(out)
}

// initRepo creates a repository with one commit on master
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	dir := t.TempDir()
	gitRun(t, dir, "init")
	gitRun(t, dir, "symbolic-ref", "HEAD", "refs/heads/master")
	gitRun(t, dir, "config", "user.email", "dev@example.com")
	gitRun(t, dir, "config", "user.name", "Dev")
	writeCommit(t, dir, "README.md", "hello\n", "initial commit")
	return dir
}

func writeCommit(t *testing.T, dir, file, content, message string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0644))
	gitRun(t, dir, "add", file)
	gitRun(t, dir, "commit", "-m", message)
}

func TestOpenWalksUpToRepositoryRoot(t *testing.T) {
	dir := initRepo(t)
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	repo, err := Open(nested)
	require.NoError(t, err)
	assert.Equal(t, dir, repo.Path)
}

func TestOpenOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	_, err := Open(t.TempDir())
	var notFound *RepositoryNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCurrentBranch(t *testing.T) {
	dir := initRepo(t)
	gitRun(t, dir, "checkout", "-b", "feature/ADW-1495-toc-dynamic-variation")

	repo, err := Open(dir)
	require.NoError(t, err)

	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "feature/ADW-1495-toc-dynamic-variation", branch.Name)
	// No origin configured: tracking state is unknown, not zero/zero
	assert.False(t, branch.TrackingKnown)
}

func TestCurrentBranchDetachedHead(t *testing.T) {
	dir := initRepo(t)
	gitRun(t, dir, "checkout", "--detach", "HEAD")

	repo, err := Open(dir)
	require.NoError(t, err)

	_, err = repo.CurrentBranch()
	var detached *DetachedHeadError
	assert.ErrorAs(t, err, &detached)
}

func TestHasBranch(t *testing.T) {
	dir := initRepo(t)
	gitRun(t, dir, "branch", "dev")

	repo, err := Open(dir)
	require.NoError(t, err)

	assert.True(t, repo.HasBranch("dev"))
	assert.False(t, repo.HasBranch("staging"))
}

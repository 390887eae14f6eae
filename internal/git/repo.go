package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/merkle-dx/adopr/internal/logging"
	"github.com/merkle-dx/adopr/internal/models"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repo is a read-only handle on a local repository. All inspection goes
// through go-git; fetch uses the git CLI to inherit the SSH agent.
type Repo struct {
	Path string

	repo *gogit.Repository
}

// Open opens the repository at path, walking up parent directories the way
// git itself does. Returns RepositoryNotFoundError when no repository is
// found between path and the filesystem root.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	dir := abs
	for {
		if r, err := gogit.PlainOpen(dir); err == nil {
			logging.Logger.Debug("opened repository", "path", dir)
			return &Repo{Path: dir, repo: r}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, &RepositoryNotFoundError{Path: abs}
		}
		dir = parent
	}
}

// OpenCurrent opens the repository containing the current working directory
func OpenCurrent() (*Repo, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return Open(cwd)
}

// CurrentBranch returns a snapshot of the checked-out branch, including
// ahead/behind counts versus its origin counterpart when that is resolvable.
// Returns DetachedHeadError when HEAD does not point at a named branch.
func (r *Repo) CurrentBranch() (models.BranchRef, error) {
	head, err := r.repo.Head()
	if err != nil {
		return models.BranchRef{}, err
	}
	if !head.Name().IsBranch() {
		return models.BranchRef{}, &DetachedHeadError{Path: r.Path}
	}

	name := head.Name().Short()

	ahead, behind, err := r.aheadBehind(name)
	if err != nil {
		logging.Logger.Debug("upstream tracking unknown", "branch", name, "error", err)
		return models.UntrackedBranchRef(name), nil
	}
	return models.NewBranchRef(name, ahead, behind), nil
}

// aheadBehind counts commits on each side of branch...origin/branch
func (r *Repo) aheadBehind(branch string) (ahead, behind int, err error) {
	out, err := r.execGit("rev-list", "--left-right", "--count", branch+"...origin/"+branch)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) != 2 {
		return 0, 0, &GitError{Command: "rev-list", Output: "unexpected output: " + string(out)}
	}
	ahead, _ = strconv.Atoi(fields[0])
	behind, _ = strconv.Atoi(fields[1])
	return ahead, behind, nil
}

// HasBranch checks if a branch exists locally or on origin
func (r *Repo) HasBranch(name string) bool {
	if _, err := r.repo.Reference(plumbing.NewRemoteReferenceName("origin", name), true); err == nil {
		return true
	}
	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	return err == nil
}

// Fetch fetches the given branches from origin using the git CLI
// (to inherit the SSH agent)
func (r *Repo) Fetch(branches ...string) error {
	args := append([]string{"fetch", "origin"}, branches...)
	out, err := r.execGit(args...)
	if err != nil {
		outputStr := strings.TrimSpace(string(out))
		if strings.Contains(outputStr, "couldn't find remote ref") {
			return &BranchNotFoundError{Branches: branches}
		}
		if outputStr != "" {
			return &GitError{Command: "fetch", Output: outputStr}
		}
		return &GitError{Command: "fetch", Output: "Failed to fetch from remote (check network/auth)"}
	}
	return nil
}

// resolve resolves a revision against origin/<name> first, then <name>
func (r *Repo) resolve(name string) (*plumbing.Hash, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision("refs/remotes/origin/" + name))
	if err == nil {
		return hash, nil
	}
	return r.repo.ResolveRevision(plumbing.Revision(name))
}

// execGit runs a git command inside the repository
func (r *Repo) execGit(args ...string) ([]byte, error) {
	cmd := exec.Command("git", append([]string{"-C", r.Path}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, err
	}
	return out, nil
}

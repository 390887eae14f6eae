package git

import (
	"os/exec"
	"strings"

	"github.com/merkle-dx/adopr/internal/logging"
	"github.com/merkle-dx/adopr/internal/models"

	"github.com/go-git/go-git/v5/plumbing"
)

// CheckMergeability runs a three-way merge of source into target entirely
// in-index via `git merge-tree --write-tree`, so the working tree and refs
// are never touched. Returns Clean, Conflicting with the conflicted paths,
// or Unknown when the check itself could not run (unresolvable target ref,
// git too old for --write-tree). Unknown is not Clean; callers must surface
// it separately.
func (r *Repo) CheckMergeability(sourceBranch, targetBranch string) models.MergeStatus {
	sourceHash, err := r.repo.ResolveRevision(plumbing.Revision("refs/heads/" + plumbingRevision(sourceBranch)))
	if err != nil {
		sourceHash, err = r.resolve(sourceBranch)
		if err != nil {
			return models.Unknown("cannot resolve source branch " + sourceBranch)
		}
	}

	targetHash, err := r.resolve(targetBranch)
	if err != nil {
		return models.Unknown("cannot resolve target branch " + targetBranch + "; fetch it first")
	}

	out, err := r.execGit("merge-tree", "--write-tree", "--name-only", "--no-messages",
		targetHash.String(), sourceHash.String())

	if err == nil {
		return models.Clean
	}

	// Exit status 1 means the merge tree was written but carries conflicts;
	// anything else means the check did not run.
	exitErr, ok := err.(*exec.ExitError)
	if !ok || exitErr.ExitCode() != 1 {
		logging.Logger.Debug("merge-tree unavailable", "error", err, "output", string(out))
		return models.Unknown("merge-tree check failed: " + strings.TrimSpace(string(out)))
	}

	return models.Conflicting(parseConflictedPaths(string(out)))
}

// parseConflictedPaths extracts the conflicted file section of
// `merge-tree --write-tree --name-only` output: the first line is the tree
// OID, every following non-empty line is a conflicted path.
func parseConflictedPaths(out string) []string {
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	var paths []string
	seen := make(map[string]bool)
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		paths = append(paths, line)
	}
	return paths
}

// plumbingRevision guards against callers passing a fully qualified ref
func plumbingRevision(branch string) string {
	return strings.TrimPrefix(branch, "refs/heads/")
}

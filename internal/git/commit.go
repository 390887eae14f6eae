package git

import (
	"strconv"
	"strings"

	"github.com/merkle-dx/adopr/internal/models"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Summarize builds the ChangeSummary for HEAD versus the target branch:
// commits reachable from HEAD but not from origin/<target> (falling back to
// the local target ref), most recent first, plus aggregate diff statistics.
func (r *Repo) Summarize(targetBranch string) (models.ChangeSummary, error) {
	head, err := r.repo.Head()
	if err != nil {
		return models.ChangeSummary{}, err
	}

	baseHash, err := r.resolve(targetBranch)
	if err != nil {
		return models.ChangeSummary{}, &BranchNotFoundError{Branches: []string{targetBranch}}
	}

	// Build set of commits reachable from the target tip
	baseCommits := make(map[string]bool)
	baseIter, err := r.repo.Log(&gogit.LogOptions{From: *baseHash})
	if err != nil {
		return models.ChangeSummary{}, err
	}
	baseIter.ForEach(func(c *object.Commit) error {
		baseCommits[c.Hash.String()] = true
		return nil
	})

	headIter, err := r.repo.Log(&gogit.LogOptions{From: head.Hash()})
	if err != nil {
		return models.ChangeSummary{}, err
	}

	var commits []models.CommitRecord
	seen := make(map[string]bool)
	err = headIter.ForEach(func(c *object.Commit) error {
		// Don't stop iteration on base commits - merge commits have
		// multiple parents and feature commits can hide behind them.
		if seen[c.Hash.String()] || baseCommits[c.Hash.String()] {
			return nil
		}
		seen[c.Hash.String()] = true

		commits = append(commits, models.NewCommitRecord(
			c.Hash.String()[:7],
			c.Author.Name,
			strings.SplitN(c.Message, "\n", 2)[0],
			c.Author.When,
			commitPaths(c),
			c.NumParents() > 1,
		))
		return nil
	})
	if err != nil {
		return models.ChangeSummary{}, err
	}

	stats, err := r.diffStats(targetBranch)
	if err != nil {
		return models.ChangeSummary{}, err
	}

	return models.ChangeSummary{Commits: commits, Stats: stats}, nil
}

// commitPaths returns the files touched by a commit, in diff order
func commitPaths(c *object.Commit) []string {
	stats, err := c.Stats()
	if err != nil {
		return nil
	}
	paths := make([]string, 0, len(stats))
	for _, s := range stats {
		paths = append(paths, s.Name)
	}
	return paths
}

// diffStats aggregates numstat counts for target...HEAD
func (r *Repo) diffStats(targetBranch string) (models.FileStats, error) {
	args := [][]string{
		{"diff", "--numstat", "origin/" + targetBranch + "...HEAD"},
		{"diff", "--numstat", targetBranch + "...HEAD"},
	}

	var out []byte
	var err error
	for _, a := range args {
		out, err = r.execGit(a...)
		if err == nil {
			break
		}
	}
	if err != nil {
		return models.FileStats{}, &GitError{Command: "diff", Output: strings.TrimSpace(string(out))}
	}

	var stats models.FileStats
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		stats.FilesChanged++
		// Binary files report "-" for both counts
		if add, err := strconv.Atoi(fields[0]); err == nil {
			stats.Additions += add
		}
		if del, err := strconv.Atoi(fields[1]); err == nil {
			stats.Deletions += del
		}
	}
	return stats, nil
}

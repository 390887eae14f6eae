package git

import "strings"

// GitError provides better context for git command failures
type GitError struct {
	Command string
	Output  string
}

func (e *GitError) Error() string {
	return "git " + e.Command + ": " + e.Output
}

// RepositoryNotFoundError indicates the given location is not a git repository
type RepositoryNotFoundError struct {
	Path string
}

func (e *RepositoryNotFoundError) Error() string {
	return "not a git repository: " + e.Path
}

// DetachedHeadError indicates no named branch is checked out. Ticket
// extraction and title generation need a branch name, so this is fatal.
type DetachedHeadError struct {
	Path string
}

func (e *DetachedHeadError) Error() string {
	return "HEAD is detached in " + e.Path + "; check out a named branch first"
}

// BranchNotFoundError indicates a branch was not found on the remote
type BranchNotFoundError struct {
	Branches []string
}

func (e *BranchNotFoundError) Error() string {
	return "Branch not found on remote: " + strings.Join(e.Branches, ", ")
}

package models

// BranchRef is an immutable snapshot of a local branch, taken once per run
type BranchRef struct {
	// Name is the short branch name (e.g., "feature/ADW-1495-toc")
	Name string
	// Ahead is the number of commits ahead of the upstream branch
	Ahead int
	// Behind is the number of commits behind the upstream branch
	Behind int
	// TrackingKnown is false when the branch has no upstream configured
	TrackingKnown bool
}

// NewBranchRef creates a BranchRef with a known upstream state
func NewBranchRef(name string, ahead, behind int) BranchRef {
	return BranchRef{
		Name:          name,
		Ahead:         ahead,
		Behind:        behind,
		TrackingKnown: true,
	}
}

// UntrackedBranchRef creates a BranchRef for a branch without an upstream
func UntrackedBranchRef(name string) BranchRef {
	return BranchRef{Name: name}
}

// RefName returns the fully qualified ref name (refs/heads/<name>)
func (b BranchRef) RefName() string {
	return "refs/heads/" + b.Name
}

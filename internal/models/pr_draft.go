package models

// PRDraft is a fully determined pull request before any network mutation.
// The draft is the unit passed into dry-run or submission.
type PRDraft struct {
	// Source is the branch the changes live on
	Source BranchRef
	// Target is the branch the PR merges into
	Target BranchRef
	// Ticket is the resolved ticket (may be the placeholder sentinel)
	Ticket TicketID
	// Title is the generated PR title
	Title string
	// Description is the generated markdown body
	Description string
}

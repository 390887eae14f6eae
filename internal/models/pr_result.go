package models

// PRResult is the outcome of a submission: either a freshly created PR or a
// reference to a pre-existing open PR for the same source→target pair.
// It never represents a partial state.
type PRResult struct {
	// ID is the numeric pull request id
	ID int
	// URL is the web URL of the pull request
	URL string
	// Title is the PR title as stored by the service
	Title string
	// Status is the service-side status string (e.g., "active")
	Status string
	// AlreadyExisted is true when an open PR for the branch pair was found
	// and no create call was issued
	AlreadyExisted bool
}

package models

import "time"

// CommitRecord contains information about a single git commit.
// Produced by the inspector and read-only afterward.
type CommitRecord struct {
	// Hash is the short commit hash (7 characters)
	Hash string
	// Author is the commit author name
	Author string
	// Subject is the first line of the commit message
	Subject string
	// When is the author timestamp
	When time.Time
	// Paths are the files touched by this commit, in diff order
	Paths []string
	// IsMerge is true for commits with more than one parent
	IsMerge bool
}

// NewCommitRecord creates a new CommitRecord
func NewCommitRecord(hash, author, subject string, when time.Time, paths []string, isMerge bool) CommitRecord {
	return CommitRecord{
		Hash:    hash,
		Author:  author,
		Subject: subject,
		When:    when,
		Paths:   paths,
		IsMerge: isMerge,
	}
}

package models

// FileStats aggregates file-level change counts between two branch tips
type FileStats struct {
	// FilesChanged is the number of distinct files touched
	FilesChanged int
	// Additions is the total number of added lines
	Additions int
	// Deletions is the total number of removed lines
	Deletions int
}

// ChangeSummary describes everything on the source branch that the target
// branch does not have: the commits, newest first, plus aggregate file stats.
// Derived once by the inspector, never mutated.
type ChangeSummary struct {
	// Commits in head but not in base, most recent first
	Commits []CommitRecord
	// Stats are the aggregate diff statistics (base...head)
	Stats FileStats
}

// IsEmpty reports whether the source branch has nothing the target lacks
func (s ChangeSummary) IsEmpty() bool {
	return len(s.Commits) == 0
}

// Subjects returns the distinct commit subjects, most recent first
func (s ChangeSummary) Subjects() []string {
	seen := make(map[string]bool)
	var subjects []string
	for _, c := range s.Commits {
		if c.IsMerge || seen[c.Subject] {
			continue
		}
		seen[c.Subject] = true
		subjects = append(subjects, c.Subject)
	}
	return subjects
}

// LatestSubject returns the subject of the most recent non-merge commit,
// or "" when the summary is empty
func (s ChangeSummary) LatestSubject() string {
	for _, c := range s.Commits {
		if !c.IsMerge {
			return c.Subject
		}
	}
	return ""
}

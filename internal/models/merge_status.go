package models

// MergeStatus is the result of a non-destructive mergeability check
type MergeStatus interface {
	isMergeStatus()
}

type mergeClean struct{}
type mergeConflicting struct{ Paths []string }
type mergeUnknown struct{ Reason string }

func (mergeClean) isMergeStatus()       {}
func (mergeConflicting) isMergeStatus() {}
func (mergeUnknown) isMergeStatus()     {}

// Clean indicates the source branch merges into the target without conflicts
var Clean MergeStatus = mergeClean{}

// Conflicting creates a MergeStatus carrying the conflicting paths
func Conflicting(paths []string) MergeStatus {
	return mergeConflicting{Paths: paths}
}

// Unknown creates a MergeStatus for cases where mergeability could not be
// determined. Callers must surface it distinctly from Clean.
func Unknown(reason string) MergeStatus {
	return mergeUnknown{Reason: reason}
}

// IsClean returns true if the status is Clean
func IsClean(s MergeStatus) bool {
	_, ok := s.(mergeClean)
	return ok
}

// IsConflicting returns true if the status is Conflicting
func IsConflicting(s MergeStatus) bool {
	_, ok := s.(mergeConflicting)
	return ok
}

// IsUnknown returns true if the status is Unknown
func IsUnknown(s MergeStatus) bool {
	_, ok := s.(mergeUnknown)
	return ok
}

// ConflictPaths returns the conflicting paths for a Conflicting status
func ConflictPaths(s MergeStatus) []string {
	if c, ok := s.(mergeConflicting); ok {
		return c.Paths
	}
	return nil
}

// UnknownReason returns the reason string for an Unknown status
func UnknownReason(s MergeStatus) string {
	if u, ok := s.(mergeUnknown); ok {
		return u.Reason
	}
	return ""
}

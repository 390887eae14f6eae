package prompt

import "sync"

// Suggestion is one autocomplete entry: the value that would be selected
// plus an optional display label
type Suggestion struct {
	Value string
	Label string
}

// suggestionStore holds the latest committed suggestion list. It is written
// only by fetch workers and read only by the input loop; one mutex guards
// everything. A worker's result is committed only when its generation is
// still current, so a stale in-flight fetch can never overwrite the list
// for a newer query prefix.
type suggestionStore struct {
	mu sync.Mutex

	generation  int
	query       string
	suggestions []Suggestion
}

// next registers a new query prefix and returns its generation number.
// Interest in any older in-flight fetch is dropped immediately: the
// previous suggestions are cleared rather than shown against the new query.
func (s *suggestionStore) next(query string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.query = query
	s.suggestions = nil
	return s.generation
}

// seed installs suggestions under the current generation without
// registering a new query. Used for pre-loaded suggestions (history,
// defaults) shown while the first fetch is still in flight; that fetch's
// commit carries the same generation and replaces them.
func (s *suggestionStore) seed(suggestions []Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = suggestions
}

// commit installs a fetch result. Rebuilds the list, never merges.
// Returns false when the result is stale and was discarded.
func (s *suggestionStore) commit(generation int, suggestions []Suggestion) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false
	}
	s.suggestions = suggestions
	return true
}

// snapshot returns the latest committed suggestions and their query
func (s *suggestionStore) snapshot() (string, []Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query, s.suggestions
}

package prompt

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCommitCurrentGeneration(t *testing.T) {
	s := &suggestionStore{}

	gen := s.next("ADW-1")
	ok := s.commit(gen, []Suggestion{{Value: "ADW-1495"}})
	require.True(t, ok)

	query, suggestions := s.snapshot()
	assert.Equal(t, "ADW-1", query)
	assert.Equal(t, []Suggestion{{Value: "ADW-1495"}}, suggestions)
}

// A slow fetch for an old prefix must never overwrite the list for a newer
// one: its commit is rejected and the newer result stands.
func TestStoreDiscardsStaleCommit(t *testing.T) {
	s := &suggestionStore{}

	oldGen := s.next("ADW-1")
	newGen := s.next("ADW-14")

	require.True(t, s.commit(newGen, []Suggestion{{Value: "ADW-1495"}}))
	assert.False(t, s.commit(oldGen, []Suggestion{{Value: "ADW-1"}}))

	query, suggestions := s.snapshot()
	assert.Equal(t, "ADW-14", query)
	assert.Equal(t, []Suggestion{{Value: "ADW-1495"}}, suggestions)
}

func TestStoreNextClearsSuggestions(t *testing.T) {
	s := &suggestionStore{}

	gen := s.next("ADW")
	require.True(t, s.commit(gen, []Suggestion{{Value: "ADW-7"}}))

	s.next("ADW-1")
	_, suggestions := s.snapshot()
	assert.Empty(t, suggestions)
}

func TestStoreConcurrentCommits(t *testing.T) {
	s := &suggestionStore{}

	// Many racing workers; only the last registered generation may win.
	var wg sync.WaitGroup
	gens := make([]int, 10)
	for i := range gens {
		gens[i] = s.next("query")
	}
	for i, g := range gens {
		wg.Add(1)
		go func(gen, n int) {
			defer wg.Done()
			s.commit(gen, []Suggestion{{Value: "result"}})
		}(g, i)
	}
	wg.Wait()

	_, suggestions := s.snapshot()
	if len(suggestions) > 0 {
		assert.Equal(t, "result", suggestions[0].Value)
	}
}

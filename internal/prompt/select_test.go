package prompt

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Pre-loaded suggestions (history, defaults) must be on screen before the
// first fetch returns, and the fetch result then replaces them.
func TestInitialSuggestionsVisibleBeforeFirstFetch(t *testing.T) {
	fetch := func(ctx context.Context, query string) ([]Suggestion, error) {
		return []Suggestion{{Value: "ADW-2000"}}, nil
	}

	m := newSelectModel(context.Background(), Options{
		Fetch:      fetch,
		Initial:    []Suggestion{{Value: "ADW-1495", Label: "recent"}},
		MaxVisible: 8,
	})

	// Nothing has run yet: the seed list is already visible
	_, suggestions := m.store.snapshot()
	require.Equal(t, []Suggestion{{Value: "ADW-1495", Label: "recent"}}, suggestions)
	require.NotNil(t, m.initFetch)

	// The initial fetch commits under the registered generation and wins
	m.store.mu.Lock()
	gen := m.store.generation
	m.store.mu.Unlock()
	require.True(t, m.store.commit(gen, []Suggestion{{Value: "ADW-2000"}}))

	_, suggestions = m.store.snapshot()
	require.Len(t, suggestions, 1)
	assert.Equal(t, "ADW-2000", suggestions[0].Value)
}

func TestInitialSuggestionsWithoutFetch(t *testing.T) {
	m := newSelectModel(context.Background(), Options{
		Initial:    []Suggestion{{Value: "ADW-7"}},
		MaxVisible: 8,
	})

	_, suggestions := m.store.snapshot()
	assert.Equal(t, []Suggestion{{Value: "ADW-7"}}, suggestions)
	assert.Nil(t, m.initFetch)
}

func TestInteractive(t *testing.T) {
	// Explicit disable wins over everything, including an explicit enable
	assert.False(t, Interactive(true, true))
	assert.False(t, Interactive(false, true))
	assert.True(t, Interactive(true, false))
}

func TestTruncateLabelMultibyte(t *testing.T) {
	label := strings.Repeat("é", 60)
	out := truncateLabel(label, 50)

	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 50, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, "…"))

	short := "é label"
	assert.Equal(t, short, truncateLabel(short, 50))
}

package prompt

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/merkle-dx/adopr/internal/models"
)

const historyMaxAge = 30 * 24 * time.Hour

// historyEntry is the persisted form of a recently used ticket
type historyEntry struct {
	Ticket  string    `json:"ticket"`
	Summary string    `json:"summary"`
	UsedAt  time.Time `json:"used_at"`
}

func historyPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "adopr-history.json"), nil
}

// RecentTickets loads recently used tickets, pruning stale entries. The
// result seeds the selector's suggestion list before the first remote
// fetch returns. Failures yield an empty list, never an error: history is
// a convenience, not a dependency.
func RecentTickets() []Suggestion {
	var suggestions []Suggestion
	for _, e := range loadHistoryEntries() {
		suggestions = append(suggestions, Suggestion{Value: e.Ticket, Label: e.Summary})
	}
	return suggestions
}

// RememberTicket records a confirmed ticket at the front of the history.
// The placeholder sentinel is never recorded.
func RememberTicket(id models.TicketID, summary string) {
	if id == "" || id.IsPlaceholder() {
		return
	}

	entries := []historyEntry{{Ticket: string(id), Summary: summary, UsedAt: time.Now()}}
	for _, e := range loadHistoryEntries() {
		if e.Ticket == string(id) {
			continue
		}
		entries = append(entries, e)
	}
	saveHistoryEntries(entries)
}

// loadHistoryEntries loads and prunes old entries from the history file
func loadHistoryEntries() []historyEntry {
	path, err := historyPath()
	if err != nil {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var entries []historyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}

	cutoff := time.Now().Add(-historyMaxAge)
	var valid []historyEntry
	for _, e := range entries {
		if e.UsedAt.After(cutoff) {
			valid = append(valid, e)
		}
	}

	// Rewrite file if we pruned anything
	if len(valid) != len(entries) {
		saveHistoryEntries(valid)
	}

	return valid
}

func saveHistoryEntries(entries []historyEntry) {
	path, err := historyPath()
	if err != nil {
		return
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return
	}

	_ = os.WriteFile(path, data, 0644)
}

// Package ticket resolves the tracking-ticket identifier for a branch.
// Extraction from the branch name is tried first; the interactive selector
// is only engaged on a miss, and only when interactivity was enabled at
// startup.
package ticket

import (
	"context"
	"regexp"
	"strings"

	"github.com/merkle-dx/adopr/internal/logging"
	"github.com/merkle-dx/adopr/internal/models"
)

// SelectFunc asks the operator for a ticket, usually via the interactive
// prompt. An empty id means the operator opted for the placeholder.
type SelectFunc func(ctx context.Context) (models.TicketID, error)

// Resolver extracts ticket ids from branch names
type Resolver struct {
	// patterns are tried in declared order; the first match wins. A branch
	// name carrying two ticket-like substrings therefore resolves to the
	// one matched by the earliest pattern (tested policy, not accident).
	patterns []*regexp.Regexp

	fromText *regexp.Regexp

	interactive bool
	selectFn    SelectFunc
}

// NewResolver builds a resolver for the given ticket prefix (e.g., "ADW").
// selectFn may be nil when interactive is false.
func NewResolver(prefix string, interactive bool, selectFn SelectFunc) *Resolver {
	id := "(" + regexp.QuoteMeta(prefix) + `-[0-9]+)`
	return &Resolver{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^feature/` + id),
			regexp.MustCompile(`(?i)^bugfix/` + id),
			regexp.MustCompile(`(?i)^defect/` + id),
			regexp.MustCompile(`(?i)^` + id),
		},
		fromText:    regexp.MustCompile(`(?i)` + id),
		interactive: interactive,
		selectFn:    selectFn,
	}
}

// Extract applies the ordered branch-name patterns and returns the first
// match, normalized. It never invokes the selector.
func (r *Resolver) Extract(branchName string) (models.TicketID, bool) {
	for _, p := range r.patterns {
		if m := p.FindStringSubmatch(branchName); m != nil {
			return normalize(m[1]), true
		}
	}
	return "", false
}

// FromText finds a ticket id anywhere in free text (commit subjects,
// work-item titles)
func (r *Resolver) FromText(text string) (models.TicketID, bool) {
	if m := r.fromText.FindString(text); m != "" {
		return normalize(m), true
	}
	return "", false
}

// Resolve returns the ticket for the branch. On an extraction miss it asks
// the operator when interactive, otherwise it returns the placeholder
// sentinel without blocking. It never fabricates a ticket number.
func (r *Resolver) Resolve(ctx context.Context, branch models.BranchRef) (models.TicketID, error) {
	if id, ok := r.Extract(branch.Name); ok {
		logging.Logger.Debug("ticket extracted from branch", "branch", branch.Name, "ticket", id)
		return id, nil
	}

	if !r.interactive || r.selectFn == nil {
		logging.Logger.Debug("no ticket in branch name, using placeholder", "branch", branch.Name)
		return models.PlaceholderTicket, nil
	}

	id, err := r.selectFn(ctx)
	if err != nil {
		return "", err
	}
	if id == "" {
		return models.PlaceholderTicket, nil
	}
	return normalize(string(id)), nil
}

func normalize(raw string) models.TicketID {
	return models.TicketID(strings.ToUpper(raw))
}

// Package describe turns a branch, a resolved ticket, and a change summary
// into the pull request title and description. Everything here is pure:
// the same inputs always produce byte-identical output, so a dry run shows
// exactly what submission would send.
package describe

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/merkle-dx/adopr/internal/models"
)

const titleMaxRunes = 72

// Generator renders PR titles and descriptions
type Generator struct {
	orgTag         string
	trackerBaseURL string
	ticketRegex    *regexp.Regexp
}

// NewGenerator builds a generator. ticketRegex matches ticket ids inside
// free text (branch names, commit subjects) and is used to strip them from
// descriptive parts.
func NewGenerator(orgTag, trackerBaseURL string, ticketRegex *regexp.Regexp) *Generator {
	return &Generator{
		orgTag:         orgTag,
		trackerBaseURL: trackerBaseURL,
		ticketRegex:    ticketRegex,
	}
}

// Title renders `<ticket> [<tag>] <descriptive part>`. The descriptive part
// comes from the branch name after the ticket id when present, otherwise
// from the most recent non-merge commit subject with ticket ids stripped.
// The result is capped at 72 runes.
func (g *Generator) Title(branch models.BranchRef, ticket models.TicketID, summary models.ChangeSummary) string {
	desc := g.titleFromBranch(branch.Name, ticket)
	if desc == "" {
		desc = g.stripTickets(summary.LatestSubject())
	}
	if desc == "" {
		desc = "Changes"
	}
	return truncate(fmt.Sprintf("%s [%s] %s", ticket, g.orgTag, desc), titleMaxRunes)
}

// titleFromBranch extracts the part after the ticket id and title-cases it:
// feature/ADW-1495-toc-dynamic-variation → "Toc Dynamic Variation"
func (g *Generator) titleFromBranch(branchName string, ticket models.TicketID) string {
	idx := strings.Index(strings.ToUpper(branchName), strings.ToUpper(string(ticket)))
	if idx < 0 {
		return ""
	}
	rest := branchName[idx+len(ticket):]
	rest = strings.Trim(rest, "-_ /")
	if rest == "" {
		return ""
	}

	rest = strings.ReplaceAll(rest, "-", " ")
	rest = strings.ReplaceAll(rest, "_", " ")
	words := strings.Fields(rest)
	for i, w := range words {
		runes := []rune(w)
		words[i] = strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
	return strings.Join(words, " ")
}

// Description renders the full PR body. The tickets section is omitted when
// the ticket is the placeholder sentinel; a placeholder never turns into a
// dead tracker link.
func (g *Generator) Description(ticket models.TicketID, summary models.ChangeSummary) string {
	var b strings.Builder

	b.WriteString("## What does this PR do?\n\n")
	b.WriteString(g.whatSection(summary))
	b.WriteString("\n\n---\n\n")

	if !ticket.IsPlaceholder() {
		b.WriteString("## What are the relevant tickets?\n\n")
		fmt.Fprintf(&b, "[%s](%s/%s)\n\n---\n\n", ticket, g.trackerBaseURL, ticket)
	}

	b.WriteString("## Has the Sonarqube scan for your branch been reviewed to make sure no new issues have been introduced?\n\n")
	b.WriteString("- [ ] YES - Sonarqube scan has been reviewed and no new issues have been introduced\n")
	b.WriteString("- [ ] NO - Sonarqube scan has NOT been reviewed (explanation required below)\n\n---\n\n")

	b.WriteString("## Describe how these changes have been tested\n\n")
	b.WriteString(g.testingSection(summary))
	b.WriteString("\n\n---\n\n")

	b.WriteString("## Files changed\n\n")
	fmt.Fprintf(&b, "%d files changed, %d insertions(+), %d deletions(-)\n\n---\n\n",
		summary.Stats.FilesChanged, summary.Stats.Additions, summary.Stats.Deletions)

	b.WriteString("## Additional Resources / Comments\n\nNone.\n")
	return b.String()
}

// whatSection summarizes the change set: the latest non-merge subject as a
// lead sentence, then the remaining de-duplicated subjects as bullets.
func (g *Generator) whatSection(summary models.ChangeSummary) string {
	subjects := summary.Subjects()
	if len(subjects) == 0 {
		return "Updates from current branch."
	}

	lead := sentence(g.stripTickets(subjects[0]))
	if len(subjects) == 1 {
		return lead
	}

	var b strings.Builder
	b.WriteString(lead)
	b.WriteString("\n")
	for _, s := range subjects[1:] {
		if cleaned := g.stripTickets(s); cleaned != "" {
			b.WriteString("\n- " + cleaned)
		}
	}
	return b.String()
}

var testFileRegex = regexp.MustCompile(`(?i)(test|spec)\.(java|js|jsx|ts|tsx|go)$`)

func (g *Generator) testingSection(summary models.ChangeSummary) string {
	for _, c := range summary.Commits {
		for _, p := range c.Paths {
			if testFileRegex.MatchString(p) {
				return "Unit tests added/updated. Manual testing performed in AEM author environment."
			}
		}
	}
	return "Manual testing performed in AEM author environment."
}

// stripTickets removes ticket ids and leftover separators from free text
func (g *Generator) stripTickets(text string) string {
	cleaned := g.ticketRegex.ReplaceAllString(text, "")
	cleaned = strings.Trim(cleaned, " -:_")
	return strings.Join(strings.Fields(cleaned), " ")
}

// sentence capitalizes the first rune and ensures terminal punctuation
func sentence(s string) string {
	if s == "" {
		return "Updates from current branch."
	}
	runes := []rune(s)
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	s = string(runes)
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

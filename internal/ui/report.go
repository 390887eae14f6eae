package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/merkle-dx/adopr/internal/models"
)

const ruleWidth = 72

func rule(style lipgloss.Style) string {
	return style.Render(strings.Repeat("═", ruleWidth))
}

var successTitles = []string{
	"🚀 PULL REQUEST LAUNCHED 🚀",
	"⚡ PULL REQUEST DEPLOYED ⚡",
	"🌟 PULL REQUEST CREATED 🌟",
}

// RenderSuccess renders the celebratory banner for a freshly created PR.
// The title rotates on the PR id so repeated runs stay deterministic.
func RenderSuccess(result *models.PRResult, source, target string) string {
	title := successTitles[result.ID%len(successTitles)]

	var b strings.Builder
	b.WriteString(rule(SuccessStyle) + "\n")
	b.WriteString(SuccessStyle.Render("       "+title) + "\n")
	b.WriteString(rule(SuccessStyle) + "\n\n")

	fmt.Fprintf(&b, "  %s  #%d %s\n", SuccessStyle.Render("PR"), result.ID, result.Title)
	fmt.Fprintf(&b, "  %s  %s → %s\n",
		SubtleStyle.Render("Branches"),
		lipgloss.NewStyle().Foreground(BranchColor(source)).Render(source),
		lipgloss.NewStyle().Foreground(BranchColor(target)).Render(target))
	fmt.Fprintf(&b, "  %s  %s\n", SubtleStyle.Render("Status"), result.Status)
	fmt.Fprintf(&b, "  %s  %s\n", SubtleStyle.Render("URL"), URLStyle.Render(result.URL))
	return b.String()
}

// RenderExisting renders the notice for the idempotent case: an active PR
// for the pair already exists and no new one was created.
func RenderExisting(result *models.PRResult) string {
	var b strings.Builder
	b.WriteString(WarningStyle.Render("An active pull request for this branch pair already exists.") + "\n\n")
	fmt.Fprintf(&b, "  %s  #%d %s\n", SubtleStyle.Render("PR"), result.ID, result.Title)
	fmt.Fprintf(&b, "  %s  %s\n", SubtleStyle.Render("URL"), URLStyle.Render(result.URL))
	return b.String()
}

// RenderConflict renders the merge conflict banner with the conflicted
// paths. Shown before any remote call was made.
func RenderConflict(source, target string, paths []string) string {
	var b strings.Builder
	b.WriteString(rule(ErrorStyle) + "\n")
	b.WriteString(ErrorStyle.Render("       ⚔️  MERGE CONFLICT DETECTED ⚔️") + "\n")
	b.WriteString(rule(ErrorStyle) + "\n\n")

	fmt.Fprintf(&b, "Merging %s into %s would conflict. No pull request was created.\n",
		ErrorStyle.Render(source), ErrorStyle.Render(target))
	if len(paths) > 0 {
		b.WriteString("\nConflicting files:\n")
		for _, p := range paths {
			b.WriteString("  " + ErrorStyle.Render("✗") + " " + p + "\n")
		}
	}
	fmt.Fprintf(&b, "\nResolve locally first: git merge origin/%s, fix, commit, push.\n", target)
	return b.String()
}

// RenderDraft renders the dry-run preview: exactly what submission would
// have sent, plus nothing else.
func RenderDraft(draft models.PRDraft) string {
	var b strings.Builder
	b.WriteString(WarningStyle.Render("Dry run — no pull request was created.") + "\n\n")
	fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render("Source:"), draft.Source.Name)
	fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render("Target:"), draft.Target.Name)
	fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render("Ticket:"), draft.Ticket)
	fmt.Fprintf(&b, "%s %s\n\n", SubtleStyle.Render("Title:"), TitleStyle.Render(draft.Title))
	b.WriteString(SubtleStyle.Render("Description:") + "\n")
	b.WriteString(draft.Description)
	return b.String()
}

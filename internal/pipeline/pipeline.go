// Package pipeline orchestrates one submission run: inspect local state,
// resolve the ticket, generate the draft, verify mergeability, then create
// the pull request idempotently. Steps run strictly in that order; the
// conflict check happens before any remote call so a doomed submission
// never leaves the machine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/merkle-dx/adopr/internal/config"
	"github.com/merkle-dx/adopr/internal/describe"
	"github.com/merkle-dx/adopr/internal/logging"
	"github.com/merkle-dx/adopr/internal/models"
)

// ErrNoChanges is returned when the source branch has no commits the
// target lacks
var ErrNoChanges = errors.New("no commits to submit: source branch is not ahead of target")

// ConflictDetected aborts a run before submission. The working tree is
// untouched: detection happens in-index only.
type ConflictDetected struct {
	Source string
	Target string
	Paths  []string
}

func (e *ConflictDetected) Error() string {
	if len(e.Paths) == 0 {
		return fmt.Sprintf("merge of %s into %s would conflict", e.Source, e.Target)
	}
	return fmt.Sprintf("merge of %s into %s would conflict in: %s", e.Source, e.Target, strings.Join(e.Paths, ", "))
}

// Inspector is the local repository surface the pipeline reads
type Inspector interface {
	CurrentBranch() (models.BranchRef, error)
	Summarize(targetBranch string) (models.ChangeSummary, error)
	CheckMergeability(sourceBranch, targetBranch string) models.MergeStatus
	HasBranch(name string) bool
	Fetch(branches ...string) error
}

// Remote is the subset of the Azure DevOps client the pipeline calls
type Remote interface {
	ResolveRepositoryID(ctx context.Context) (string, error)
	FindActivePullRequest(ctx context.Context, repoID, sourceBranch, targetBranch string) (*models.PRResult, error)
	CreatePullRequest(ctx context.Context, repoID string, draft models.PRDraft) (*models.PRResult, error)
}

// TicketResolver resolves the tracking ticket for a branch
type TicketResolver interface {
	Resolve(ctx context.Context, branch models.BranchRef) (models.TicketID, error)
}

// Options selects the run mode
type Options struct {
	// Target overrides the configured default target branch
	Target string
	// DryRun stops after draft generation; no remote call is made
	DryRun bool
	// Sync submits the fixed stable→integration sync PR instead of the
	// current branch
	Sync bool
}

// Outcome is what a run produced. Result is nil on a dry run.
type Outcome struct {
	Draft        models.PRDraft
	Result       *models.PRResult
	DryRun       bool
	MergeWarning string
}

// Pipeline wires the components for one run
type Pipeline struct {
	repo     Inspector
	remote   Remote
	resolver TicketResolver
	gen      *describe.Generator
	cfg      *config.Config
}

func New(repo Inspector, remote Remote, resolver TicketResolver, gen *describe.Generator, cfg *config.Config) *Pipeline {
	return &Pipeline{
		repo:     repo,
		remote:   remote,
		resolver: resolver,
		gen:      gen,
		cfg:      cfg,
	}
}

// Run executes one submission. Re-running with unchanged local state is
// safe: an active PR for the same source→target pair is returned instead
// of creating a duplicate.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Outcome, error) {
	if opts.Sync {
		return p.runSync(ctx, opts)
	}

	branch, err := p.repo.CurrentBranch()
	if err != nil {
		return nil, err
	}

	target := opts.Target
	if target == "" {
		target = p.cfg.Branches.DefaultTarget
	}
	if strings.EqualFold(branch.Name, target) {
		return nil, fmt.Errorf("current branch %s is the target branch; nothing to submit", branch.Name)
	}

	// Best effort fetch so the target comparison uses fresh remote state
	if err := p.repo.Fetch(target); err != nil {
		logging.Logger.Debug("fetch before summarize failed", "target", target, "error", err)
	}
	if !p.repo.HasBranch(target) {
		return nil, fmt.Errorf("target branch %s not found locally or on origin", target)
	}

	ticket, err := p.resolver.Resolve(ctx, branch)
	if err != nil {
		return nil, err
	}

	summary, err := p.repo.Summarize(target)
	if err != nil {
		return nil, err
	}
	if summary.IsEmpty() {
		return nil, ErrNoChanges
	}

	outcome := &Outcome{DryRun: opts.DryRun}
	if warn, err := p.checkMergeability(branch.Name, target); err != nil {
		return nil, err
	} else {
		outcome.MergeWarning = warn
	}

	outcome.Draft = models.PRDraft{
		Source:      branch,
		Target:      models.UntrackedBranchRef(target),
		Ticket:      ticket,
		Title:       p.gen.Title(branch, ticket, summary),
		Description: p.gen.Description(ticket, summary),
	}

	if opts.DryRun {
		return outcome, nil
	}
	return p.submit(ctx, outcome)
}

func (p *Pipeline) runSync(ctx context.Context, opts Options) (*Outcome, error) {
	source := models.UntrackedBranchRef(p.cfg.Branches.SyncSource)
	target := models.UntrackedBranchRef(p.cfg.Branches.SyncTarget)

	if err := p.repo.Fetch(source.Name, target.Name); err != nil {
		logging.Logger.Debug("fetch before sync failed", "error", err)
	}

	outcome := &Outcome{DryRun: opts.DryRun}
	if warn, err := p.checkMergeability(source.Name, target.Name); err != nil {
		return nil, err
	} else {
		outcome.MergeWarning = warn
	}

	outcome.Draft = describe.SyncDraft(
		source, target,
		models.TicketID(p.cfg.Tickets.SyncTicket),
		p.cfg.Title.OrgTag,
		p.cfg.Tickets.TrackerBaseURL,
	)

	if opts.DryRun {
		return outcome, nil
	}
	return p.submit(ctx, outcome)
}

// checkMergeability fails fast on a detected conflict. An Unknown verdict
// does not block submission, but it is surfaced as a warning rather than
// being treated as clean.
func (p *Pipeline) checkMergeability(source, target string) (warning string, err error) {
	status := p.repo.CheckMergeability(source, target)
	switch {
	case models.IsConflicting(status):
		return "", &ConflictDetected{Source: source, Target: target, Paths: models.ConflictPaths(status)}
	case models.IsUnknown(status):
		reason := models.UnknownReason(status)
		logging.Logger.Debug("mergeability unknown", "source", source, "target", target, "reason", reason)
		return "could not verify mergeability: " + reason, nil
	default:
		return "", nil
	}
}

// submit performs the remote half of the run. The existence check makes the
// run idempotent; the create itself is attempted exactly once.
func (p *Pipeline) submit(ctx context.Context, outcome *Outcome) (*Outcome, error) {
	repoID, err := p.remote.ResolveRepositoryID(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := p.remote.FindActivePullRequest(ctx, repoID, outcome.Draft.Source.Name, outcome.Draft.Target.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logging.Logger.Debug("active pull request already exists", "id", existing.ID)
		outcome.Result = existing
		return outcome, nil
	}

	result, err := p.remote.CreatePullRequest(ctx, repoID, outcome.Draft)
	if err != nil {
		return nil, err
	}
	outcome.Result = result
	return outcome, nil
}

package main

// Must be first import - fixes Warp terminal delay before lipgloss loads
import _ "github.com/merkle-dx/adopr/internal/termfix"

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/merkle-dx/adopr/internal/azdevops"
	"github.com/merkle-dx/adopr/internal/config"
	"github.com/merkle-dx/adopr/internal/describe"
	"github.com/merkle-dx/adopr/internal/git"
	"github.com/merkle-dx/adopr/internal/logging"
	"github.com/merkle-dx/adopr/internal/models"
	"github.com/merkle-dx/adopr/internal/pipeline"
	"github.com/merkle-dx/adopr/internal/prompt"
	"github.com/merkle-dx/adopr/internal/ticket"
	"github.com/merkle-dx/adopr/internal/ui"

	"github.com/spf13/cobra"
)

var (
	targetBranch  string
	workDir       string
	dryRun        bool
	interactive   bool
	noInteractive bool
	masterToDev   bool
	debug         bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "adopr",
		Short: "Create Azure DevOps pull requests with generated titles and descriptions",
		RunE:  run,
	}

	rootCmd.Flags().StringVarP(&targetBranch, "target", "t", "", "Target branch (default from config)")
	rootCmd.Flags().StringVarP(&workDir, "work-dir", "C", "", "Repository path (default: current directory)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the draft without creating a pull request")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Force the interactive ticket prompt")
	rootCmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "Never prompt; fall back to the placeholder ticket on a miss")
	rootCmd.Flags().BoolVar(&masterToDev, "master-to-dev", false, "Create the fixed master to dev sync pull request")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Write debug logs to the cache directory")
	rootCmd.MarkFlagsMutuallyExclusive("interactive", "no-interactive")

	if err := rootCmd.Execute(); err != nil {
		var conflict *pipeline.ConflictDetected
		if errors.As(err, &conflict) {
			fmt.Println(ui.RenderConflict(conflict.Source, conflict.Target, conflict.Paths))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	if err := logging.Initialize(debug, ""); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var token string
	if !dryRun {
		token, err = config.Token()
		if err != nil {
			return err
		}
	}

	repo, err := openRepo()
	if err != nil {
		return err
	}

	client := azdevops.NewClient(azdevops.Options{
		OrgURL:     cfg.Azure.OrgURL,
		Project:    cfg.Azure.Project,
		Repository: cfg.Azure.Repository,
		Token:      token,
	})

	resolver := newResolver(cfg, client)
	gen := describe.NewGenerator(cfg.Title.OrgTag, cfg.Tickets.TrackerBaseURL, cfg.TicketRegex())

	fmt.Println(ui.RenderBanner(dryRun))
	fmt.Println()

	target := targetBranch
	if target == "" && interactive && !noInteractive && !masterToDev {
		target, err = selectTarget(cmd.Context(), cfg, client)
		if err != nil {
			return err
		}
	}

	p := pipeline.New(repo, client, resolver, gen, cfg)
	outcome, err := p.Run(cmd.Context(), pipeline.Options{
		Target: target,
		DryRun: dryRun,
		Sync:   masterToDev,
	})
	if err != nil {
		return err
	}

	report(outcome)
	return nil
}

func openRepo() (*git.Repo, error) {
	if workDir != "" {
		return git.Open(workDir)
	}
	return git.OpenCurrent()
}

// selectTarget prompts for the target branch with remote branch names as
// suggestions. Remote lookup is disabled on dry runs; the configured
// default and sync branches still seed the list.
func selectTarget(ctx context.Context, cfg *config.Config, client *azdevops.Client) (string, error) {
	var fetch prompt.FetchFunc
	if !dryRun {
		repoID, err := client.ResolveRepositoryID(ctx)
		if err != nil {
			return "", err
		}
		fetch = func(ctx context.Context, query string) ([]prompt.Suggestion, error) {
			branches, err := client.ListBranches(ctx, repoID, query)
			if err != nil {
				return nil, err
			}
			suggestions := make([]prompt.Suggestion, 0, len(branches))
			for _, b := range branches {
				suggestions = append(suggestions, prompt.Suggestion{Value: b})
			}
			return suggestions, nil
		}
	}

	value, err := prompt.Select(ctx, prompt.Options{
		Title:       "Target branch",
		Placeholder: cfg.Branches.DefaultTarget,
		Default:     cfg.Branches.DefaultTarget,
		Fetch:       fetch,
		Initial: []prompt.Suggestion{
			{Value: cfg.Branches.DefaultTarget, Label: "default target"},
			{Value: cfg.Branches.SyncSource},
		},
	})
	if err != nil {
		return "", err
	}
	if value == "" {
		return cfg.Branches.DefaultTarget, nil
	}
	return value, nil
}

// newResolver wires the ticket resolver to the interactive selector. The
// selector's remote autocomplete is disabled on dry runs so they stay
// fully offline; history and typed entry still work.
func newResolver(cfg *config.Config, client *azdevops.Client) *ticket.Resolver {
	var resolver *ticket.Resolver

	var fetch prompt.FetchFunc
	if !dryRun {
		fetch = func(ctx context.Context, query string) ([]prompt.Suggestion, error) {
			candidates, err := client.SearchWorkItems(ctx, query, 10, func(title string) (models.TicketID, bool) {
				return resolver.FromText(title)
			})
			if err != nil {
				return nil, err
			}
			suggestions := make([]prompt.Suggestion, 0, len(candidates))
			for _, c := range candidates {
				suggestions = append(suggestions, prompt.Suggestion{Value: string(c.ID), Label: c.Summary})
			}
			return suggestions, nil
		}
	}

	selectFn := func(ctx context.Context) (models.TicketID, error) {
		value, err := prompt.Select(ctx, prompt.Options{
			Title:       "No ticket in branch name, select one",
			Placeholder: cfg.Tickets.Prefix + "-1234",
			Fetch:       fetch,
			Initial:     prompt.RecentTickets(),
		})
		if err != nil {
			return "", err
		}
		if value == "" {
			return "", nil // operator chose the placeholder
		}
		return models.ParseTicketID(value)
	}

	resolver = ticket.NewResolver(cfg.Tickets.Prefix, prompt.Interactive(interactive, noInteractive), selectFn)
	return resolver
}

func report(outcome *pipeline.Outcome) {
	if outcome.MergeWarning != "" {
		fmt.Println(ui.WarningStyle.Render("⚠ " + outcome.MergeWarning))
		fmt.Println()
	}

	switch {
	case outcome.DryRun:
		fmt.Println(ui.RenderDraft(outcome.Draft))
	case outcome.Result != nil && outcome.Result.AlreadyExisted:
		fmt.Println(ui.RenderExisting(outcome.Result))
	case outcome.Result != nil:
		prompt.RememberTicket(outcome.Draft.Ticket, outcome.Draft.Title)
		fmt.Println(ui.RenderSuccess(outcome.Result, outcome.Draft.Source.Name, outcome.Draft.Target.Name))
	}
}

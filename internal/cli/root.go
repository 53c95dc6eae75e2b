package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"toggl-opsync/internal/config"
	"toggl-opsync/internal/journal"
	"toggl-opsync/internal/logging"
	"toggl-opsync/internal/openproject"
	"toggl-opsync/internal/payload"
	"toggl-opsync/internal/reconcile"
	"toggl-opsync/internal/sync"
	"toggl-opsync/internal/toggl"
)

// RootCommand represents the base command; running it without a subcommand
// performs a sync.
type RootCommand struct {
	cmd *cobra.Command
	cfg *config.Config
}

// NewRootCommand creates the root cobra command.
func NewRootCommand(cfg *config.Config) *RootCommand {
	root := &RootCommand{
		cfg: cfg,
	}

	root.cmd = &cobra.Command{
		Use:   "opsync",
		Short: "Sync Toggl time entries into OpenProject work packages",
		Long: `opsync copies billable Toggl time entries into OpenProject.

Entries are matched by a work package tag at the start of the Toggl
description, e.g. "[OP#123] Reviewed the migration plan". Untagged entries,
still-running entries and entries shorter than one minute are ignored.
Entries already present in OpenProject are detected through the comment
field (the Toggl id is stored before the " - " separator) and skipped, so
repeated runs never double-book time.

EXAMPLES:
  opsync                    # Sync the last 2 days (asks for confirmation)
  opsync --dry-run          # Show what would be submitted, change nothing
  opsync --yes              # Sync without the confirmation prompt
  opsync history            # Show recent sync runs
  opsync history 5 --entries

CONFIGURATION:
  TOGGL_API_TOKEN                  Toggl API token (required)
  TOGGL_BASE_URL                   Toggl API root (default: https://api.track.toggl.com/api/v9)
  OPENPROJECT_HOST                 OpenProject host (required)
  OPENPROJECT_HTTP_SCHEMA          http or https (default: https)
  OPENPROJECT_API_KEY              OpenProject API key (required)
  OPENPROJECT_DEFAULT_ACTIVITY_ID  Activity linked from submissions (default: 1)
  OPSYNC_LOOKBACK_DAYS             Fetch window in days (default: 2)
  OPSYNC_LOOKUP_CONCURRENCY        Parallel duplicate lookups (default: 4)
  OPSYNC_PAGE_SIZE                 Lookup page size (default: 100)
  OPSYNC_HTTP_TIMEOUT              Per-request timeout (default: 30s)
  OPSYNC_STOP_AT_END               Set stopTime to start+duration (default: false)
  OPSYNC_JOURNAL_DIR               Run history location (default: ~/.opsync)
  OPSYNC_DEBUG                     Enable debug logging

EXIT CODES:
  0  success, including "nothing to do"
  1  configuration, transport or submission failure
  2  confirmation declined`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			assumeYes, _ := cmd.Flags().GetBool("yes")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return root.runSync(cmd.Context(), assumeYes, dryRun)
		},
	}

	root.cmd.Flags().Bool("yes", false, "Submit without asking for confirmation")
	root.cmd.Flags().Bool("dry-run", false, "Show pending submissions without posting anything")

	root.cmd.AddCommand(root.newHistoryCommand())

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.cmd.ExecuteContext(context.Background())
}

// runSync assembles the pipeline from configuration and runs it once.
func (r *RootCommand) runSync(ctx context.Context, assumeYes, dryRun bool) error {
	cfg := r.cfg

	source := toggl.NewClient(cfg.Toggl.BaseURL, cfg.Toggl.APIToken, cfg.Sync.HTTPTimeout)
	sink := openproject.NewClient(cfg.OpenProject.BaseURL(), cfg.OpenProject.APIKey,
		cfg.OpenProject.PageSize, cfg.Sync.HTTPTimeout)
	reconciler := reconcile.New(sink, cfg.Sync.LookupConcurrency)
	builder := payload.NewBuilder(cfg.OpenProject.ActivityID, cfg.Sync.StopAtEnd)

	confirm := NewConfirm(os.Stdin, os.Stdout)
	if assumeYes {
		confirm = func(string) (bool, error) { return true, nil }
	}

	// The journal is advisory; a broken journal must not block a sync.
	repo := openJournal(cfg)
	if repo != nil {
		defer repo.Close()
	}

	orchestrator := sync.New(source, sink, reconciler, builder, sync.Options{
		Lookback: cfg.Lookback(),
		DryRun:   dryRun,
		Confirm:  confirm,
		Journal:  repo,
		Out:      os.Stdout,
	})

	_, err := orchestrator.Run(ctx)
	return err
}

// openJournal opens the run history database, creating its directory on
// first use. Returns nil when the journal is unavailable.
func openJournal(cfg *config.Config) journal.Repository {
	if err := os.MkdirAll(cfg.Journal.Dir, 0755); err != nil {
		logging.Debugf("journal: could not create %s: %v\n", cfg.Journal.Dir, err)
		return nil
	}
	repo, err := journal.New(cfg.JournalPath())
	if err != nil {
		logging.Debugf("journal: could not open %s: %v\n", cfg.JournalPath(), err)
		return nil
	}
	return repo
}

// newHistoryCommand creates the history subcommand reading the local journal.
func (r *RootCommand) newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [limit]",
		Short: "Show recent sync runs",
		Long:  "Show recent sync runs recorded in the local journal, newest first. The optional argument limits how many runs are shown (default 10).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := 10
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid limit: %s", args[0])
				}
				limit = n
			}
			withEntries, _ := cmd.Flags().GetBool("entries")
			return r.runHistory(cmd.Context(), limit, withEntries)
		},
	}
	cmd.Flags().Bool("entries", false, "Also list the entries submitted in each run")
	return cmd
}

func (r *RootCommand) runHistory(ctx context.Context, limit int, withEntries bool) error {
	if err := os.MkdirAll(r.cfg.Journal.Dir, 0755); err != nil {
		return err
	}
	repo, err := journal.New(r.cfg.JournalPath())
	if err != nil {
		return err
	}
	defer repo.Close()

	runs, err := repo.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No sync runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSTATUS\tFETCHED\tTAGGED\tSKIPPED\tSUBMITTED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Status, run.Fetched, run.Tagged, run.Skipped, run.Submitted)
	}
	w.Flush()

	if !withEntries {
		return nil
	}
	for _, run := range runs {
		submissions, err := repo.ListSubmissions(ctx, run.ID)
		if err != nil {
			return err
		}
		if len(submissions) == 0 {
			continue
		}
		fmt.Printf("\nRun %s (%s):\n", run.ID, run.StartedAt.Local().Format("2006-01-02 15:04:05"))
		for _, s := range submissions {
			fmt.Printf("  WP #%s  %s  %s  %s\n", s.WorkPackageID, s.SpentOn, s.Hours, s.Comment)
		}
	}
	return nil
}

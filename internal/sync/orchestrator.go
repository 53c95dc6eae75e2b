package sync

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"toggl-opsync/internal/domain"
	"toggl-opsync/internal/journal"
	"toggl-opsync/internal/logging"
	"toggl-opsync/internal/parser"
	"toggl-opsync/internal/payload"
	"toggl-opsync/internal/reconcile"
)

// ErrDeclined is returned when the user rejects the confirmation prompt.
// It is an expected outcome, not a defect; the CLI maps it to a distinct
// exit code.
var ErrDeclined = goerrors.New("submission declined by user")

// Source fetches time entries from the time tracking service.
type Source interface {
	TimeEntries(ctx context.Context, since time.Time) ([]domain.TimeEntry, error)
}

// Submitter posts a single payload to the issue tracker.
type Submitter interface {
	Submit(ctx context.Context, entry payload.TimeEntryRequest) error
}

// ConfirmFunc asks the user to approve a pending batch. It is injected so
// tests and the --yes flag can substitute a fixed answer.
type ConfirmFunc func(prompt string) (bool, error)

// Result holds counters for one sync run.
type Result struct {
	Fetched   int // entries returned by the source
	Tagged    int // entries passing the gate and carrying a work package tag
	Skipped   int // tagged entries already present in the sink
	Submitted int // entries posted this run
}

// Options configures an Orchestrator.
type Options struct {
	Lookback time.Duration
	DryRun   bool
	Confirm  ConfirmFunc
	Journal  journal.Repository // optional; failures never abort a run
	Out      io.Writer          // defaults to os.Stdout
	Now      func() time.Time   // defaults to time.Now
}

// Orchestrator drives the sync pipeline. The stages run strictly in order:
// fetch, filter/parse, reconcile, build, confirm, submit. No entry is posted
// before reconciliation has completed for every work package.
type Orchestrator struct {
	source     Source
	sink       Submitter
	reconciler *reconcile.Reconciler
	builder    *payload.Builder
	opts       Options
}

// New creates an orchestrator from its collaborators.
func New(source Source, sink Submitter, reconciler *reconcile.Reconciler, builder *payload.Builder, opts Options) *Orchestrator {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		source:     source,
		sink:       sink,
		reconciler: reconciler,
		builder:    builder,
		opts:       opts,
	}
}

// Run executes one sync run end to end and returns its counters.
// A nil error with zero submissions means there was nothing to do.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	result := &Result{}
	run := o.startRun(ctx)

	since := o.opts.Now().Add(-o.opts.Lookback)
	entries, err := o.source.TimeEntries(ctx, since)
	if err != nil {
		o.finishRun(ctx, run, result, journal.StatusFailed)
		return result, err
	}
	result.Fetched = len(entries)

	tagged := filterAndParse(entries)
	result.Tagged = len(tagged)
	logging.Debugf("sync: %d of %d fetched entries are tagged and billable\n", len(tagged), len(entries))

	pending, err := o.reconciler.Reconcile(ctx, tagged)
	if err != nil {
		o.finishRun(ctx, run, result, journal.StatusFailed)
		return result, err
	}
	result.Skipped = len(tagged) - len(pending)

	if len(pending) == 0 {
		fmt.Fprintln(o.opts.Out, "No new time entries to submit.")
		o.finishRun(ctx, run, result, journal.StatusCompleted)
		return result, nil
	}

	payloads := make([]payload.TimeEntryRequest, len(pending))
	for i, entry := range pending {
		payloads[i] = o.builder.Build(entry)
	}

	if o.opts.DryRun {
		fmt.Fprintf(o.opts.Out, "Dry run: would submit %d time entries:\n", len(payloads))
		for _, p := range payloads {
			fmt.Fprintf(o.opts.Out, "  %s  %s  %s\n", p.SpentOn, p.Hours, p.Comment.Raw)
		}
		o.finishRun(ctx, run, result, journal.StatusCompleted)
		return result, nil
	}

	ok, err := o.opts.Confirm(fmt.Sprintf("Submit %d time entries to OpenProject?", len(payloads)))
	if err != nil {
		o.finishRun(ctx, run, result, journal.StatusFailed)
		return result, err
	}
	if !ok {
		fmt.Fprintln(o.opts.Out, "Aborted by user.")
		o.finishRun(ctx, run, result, journal.StatusDeclined)
		return result, ErrDeclined
	}

	// Submission is deliberately sequential: the dedup ledger in the sink only
	// reflects prior runs, so parallel posts within one run could race.
	for i, p := range payloads {
		if err := o.sink.Submit(ctx, p); err != nil {
			// Entries posted before the failure stay posted; the next run's
			// reconciliation will not resubmit them.
			o.finishRun(ctx, run, result, journal.StatusFailed)
			return result, err
		}
		result.Submitted++
		fmt.Fprintf(o.opts.Out, "Submitted %s (%s)\n", p.Comment.Raw, p.Hours)
		o.recordSubmission(ctx, run, pending[i], p)
	}

	fmt.Fprintf(o.opts.Out, "All %d time entries submitted successfully.\n", result.Submitted)
	o.finishRun(ctx, run, result, journal.StatusCompleted)
	return result, nil
}

// filterAndParse applies the billable gate and the tag parser. Entries
// failing either are dropped silently; most entries are simply not tagged.
func filterAndParse(entries []domain.TimeEntry) []domain.TaggedEntry {
	var tagged []domain.TaggedEntry
	for _, entry := range entries {
		if !entry.Billable() {
			continue
		}
		taggedEntry, ok := parser.ParseEntry(entry)
		if !ok {
			continue
		}
		tagged = append(tagged, taggedEntry)
	}
	return tagged
}

// startRun opens a journal record for this run. The journal is advisory, so
// any error is logged and swallowed.
func (o *Orchestrator) startRun(ctx context.Context) *journal.Run {
	run := &journal.Run{
		ID:        uuid.NewString(),
		StartedAt: o.opts.Now(),
		Status:    journal.StatusFailed,
	}
	if o.opts.Journal == nil {
		return run
	}
	if err := o.opts.Journal.CreateRun(ctx, run); err != nil {
		logging.Debugf("journal: could not record run start: %v\n", err)
	}
	return run
}

func (o *Orchestrator) finishRun(ctx context.Context, run *journal.Run, result *Result, status string) {
	if o.opts.Journal == nil {
		return
	}
	now := o.opts.Now()
	run.FinishedAt = &now
	run.Fetched = result.Fetched
	run.Tagged = result.Tagged
	run.Skipped = result.Skipped
	run.Submitted = result.Submitted
	run.Status = status
	if err := o.opts.Journal.FinishRun(ctx, run); err != nil {
		logging.Debugf("journal: could not record run end: %v\n", err)
	}
}

func (o *Orchestrator) recordSubmission(ctx context.Context, run *journal.Run, entry domain.TaggedEntry, p payload.TimeEntryRequest) {
	if o.opts.Journal == nil {
		return
	}
	submission := &journal.Submission{
		RunID:         run.ID,
		TogglID:       strconv.FormatInt(entry.Entry.ID, 10),
		WorkPackageID: entry.WorkPackageID,
		Hours:         p.Hours,
		SpentOn:       p.SpentOn,
		Comment:       p.Comment.Raw,
		SubmittedAt:   o.opts.Now(),
	}
	if err := o.opts.Journal.CreateSubmission(ctx, submission); err != nil {
		logging.Debugf("journal: could not record submission: %v\n", err)
	}
}

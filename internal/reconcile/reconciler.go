package reconcile

import (
	"context"
	"strconv"
	"sync"

	"toggl-opsync/internal/domain"
	"toggl-opsync/internal/logging"
)

// Lookup answers which Toggl ids are already recorded in the sink for a
// single work package.
type Lookup interface {
	ExistingEntryIDs(ctx context.Context, workPackageID string) ([]string, error)
}

// Reconciler filters tagged entries down to the set that still needs
// submission, by checking each entry's Toggl id against the ids already
// present in the sink for its work package.
type Reconciler struct {
	lookup      Lookup
	concurrency int
}

// New creates a reconciler performing at most concurrency simultaneous
// lookups. A value below 1 is treated as 1 (fully sequential).
func New(lookup Lookup, concurrency int) *Reconciler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Reconciler{
		lookup:      lookup,
		concurrency: concurrency,
	}
}

// Reconcile returns the entries not yet present in the sink, preserving the
// input order. One lookup is performed per distinct work package id; if any
// lookup fails the whole run is aborted, since duplicate detection must be
// complete before anything is submitted.
func (r *Reconciler) Reconcile(ctx context.Context, entries []domain.TaggedEntry) ([]domain.TaggedEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	workPackageIDs := distinctWorkPackages(entries)
	logging.Debugf("reconcile: %d entries across %d work packages\n", len(entries), len(workPackageIDs))

	existing, err := r.fetchExisting(ctx, workPackageIDs)
	if err != nil {
		return nil, err
	}

	var pending []domain.TaggedEntry
	for _, entry := range entries {
		togglID := strconv.FormatInt(entry.Entry.ID, 10)
		if _, submitted := existing[entry.WorkPackageID][togglID]; submitted {
			logging.Debugf("reconcile: skipping already submitted entry %s\n", togglID)
			continue
		}
		pending = append(pending, entry)
	}
	return pending, nil
}

// distinctWorkPackages returns the distinct work package ids in input order.
func distinctWorkPackages(entries []domain.TaggedEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	var ids []string
	for _, entry := range entries {
		if _, ok := seen[entry.WorkPackageID]; ok {
			continue
		}
		seen[entry.WorkPackageID] = struct{}{}
		ids = append(ids, entry.WorkPackageID)
	}
	return ids
}

// fetchExisting queries the sink for every work package id with bounded
// concurrency. The first lookup error cancels the remaining lookups and is
// returned; a partial result is never used.
func (r *Reconciler) fetchExisting(ctx context.Context, workPackageIDs []string) (map[string]map[string]struct{}, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		results  = make(map[string]map[string]struct{}, len(workPackageIDs))
		sem      = make(chan struct{}, r.concurrency)
	)

	for _, workPackageID := range workPackageIDs {
		wg.Add(1)
		go func(wpID string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			ids, err := r.lookup.ExistingEntryIDs(ctx, wpID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				return
			}
			set := make(map[string]struct{}, len(ids))
			for _, id := range ids {
				set[id] = struct{}{}
			}
			results[wpID] = set
		}(workPackageID)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

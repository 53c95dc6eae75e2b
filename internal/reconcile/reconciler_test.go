package reconcile

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-opsync/internal/domain"
	"toggl-opsync/internal/errors"
)

// fakeLookup serves canned existing-id sets and counts its calls.
type fakeLookup struct {
	mu       sync.Mutex
	existing map[string][]string
	failFor  map[string]error
	calls    []string

	inFlight    int32
	maxInFlight int32
	delay       time.Duration
}

func (f *fakeLookup) ExistingEntryIDs(ctx context.Context, workPackageID string) ([]string, error) {
	current := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		max := atomic.LoadInt32(&f.maxInFlight)
		if current <= max || atomic.CompareAndSwapInt32(&f.maxInFlight, max, current) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.calls = append(f.calls, workPackageID)
	f.mu.Unlock()

	if err, ok := f.failFor[workPackageID]; ok {
		return nil, err
	}
	return f.existing[workPackageID], nil
}

func entryFor(id int64, workPackageID string) domain.TaggedEntry {
	stop := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)
	return domain.TaggedEntry{
		Entry: domain.TimeEntry{
			ID:              id,
			DurationSeconds: 600,
			Start:           time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			Stop:            &stop,
		},
		WorkPackageID: workPackageID,
		Description:   "work",
	}
}

func TestReconciler_Reconcile(t *testing.T) {
	tests := []struct {
		name        string
		entries     []domain.TaggedEntry
		existing    map[string][]string
		expectedIDs []int64
	}{
		{
			name:        "should exclude an entry already present in the sink",
			entries:     []domain.TaggedEntry{entryFor(999, "5"), entryFor(1000, "5")},
			existing:    map[string][]string{"5": {"999"}},
			expectedIDs: []int64{1000},
		},
		{
			name:        "should retain everything when the sink is empty",
			entries:     []domain.TaggedEntry{entryFor(1, "5"), entryFor(2, "6")},
			existing:    map[string][]string{},
			expectedIDs: []int64{1, 2},
		},
		{
			name:        "should retain nothing when every entry is present",
			entries:     []domain.TaggedEntry{entryFor(1, "5"), entryFor(2, "6")},
			existing:    map[string][]string{"5": {"1"}, "6": {"2"}},
			expectedIDs: nil,
		},
		{
			name:        "should only match ids within the entry's own work package",
			entries:     []domain.TaggedEntry{entryFor(999, "5"), entryFor(999, "6")},
			existing:    map[string][]string{"5": {"999"}},
			expectedIDs: []int64{999},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := &fakeLookup{existing: tt.existing}
			reconciler := New(lookup, 2)

			pending, err := reconciler.Reconcile(context.Background(), tt.entries)

			require.NoError(t, err)
			var ids []int64
			for _, entry := range pending {
				ids = append(ids, entry.Entry.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestReconciler_OneLookupPerWorkPackage(t *testing.T) {
	lookup := &fakeLookup{existing: map[string][]string{}}
	reconciler := New(lookup, 1)

	entries := []domain.TaggedEntry{
		entryFor(1, "5"), entryFor(2, "5"), entryFor(3, "5"),
		entryFor(4, "6"), entryFor(5, "6"),
	}
	_, err := reconciler.Reconcile(context.Background(), entries)

	require.NoError(t, err)
	assert.Len(t, lookup.calls, 2)
	assert.ElementsMatch(t, []string{"5", "6"}, lookup.calls)
}

func TestReconciler_PreservesInputOrder(t *testing.T) {
	lookup := &fakeLookup{existing: map[string][]string{}}
	reconciler := New(lookup, 4)

	var entries []domain.TaggedEntry
	for i := int64(1); i <= 20; i++ {
		entries = append(entries, entryFor(i, strconv.FormatInt(i%3, 10)))
	}
	pending, err := reconciler.Reconcile(context.Background(), entries)

	require.NoError(t, err)
	require.Len(t, pending, 20)
	for i, entry := range pending {
		assert.Equal(t, int64(i+1), entry.Entry.ID)
	}
}

func TestReconciler_FailFast(t *testing.T) {
	lookupErr := errors.NewTransportError("query existing time entries", nil)
	lookup := &fakeLookup{
		existing: map[string][]string{},
		failFor:  map[string]error{"6": lookupErr},
	}
	reconciler := New(lookup, 2)

	entries := []domain.TaggedEntry{entryFor(1, "5"), entryFor(2, "6"), entryFor(3, "7")}
	pending, err := reconciler.Reconcile(context.Background(), entries)

	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeTransport))
	assert.Nil(t, pending, "a partial reconciliation must never be used")
}

func TestReconciler_BoundsConcurrency(t *testing.T) {
	lookup := &fakeLookup{
		existing: map[string][]string{},
		delay:    10 * time.Millisecond,
	}
	reconciler := New(lookup, 2)

	var entries []domain.TaggedEntry
	for i := int64(1); i <= 10; i++ {
		entries = append(entries, entryFor(i, strconv.FormatInt(i, 10)))
	}
	_, err := reconciler.Reconcile(context.Background(), entries)

	require.NoError(t, err)
	assert.LessOrEqual(t, lookup.maxInFlight, int32(2))
}

func TestReconciler_Idempotence(t *testing.T) {
	// First pass: sink empty, everything pending.
	lookup := &fakeLookup{existing: map[string][]string{}}
	reconciler := New(lookup, 2)
	entries := []domain.TaggedEntry{entryFor(1, "5"), entryFor(2, "5")}

	pending, err := reconciler.Reconcile(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	// Second pass: the sink now knows the submitted ids.
	for _, entry := range pending {
		lookup.existing["5"] = append(lookup.existing["5"], strconv.FormatInt(entry.Entry.ID, 10))
	}
	pending, err = reconciler.Reconcile(context.Background(), entries)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReconciler_EmptyInput(t *testing.T) {
	lookup := &fakeLookup{existing: map[string][]string{}}
	reconciler := New(lookup, 2)

	pending, err := reconciler.Reconcile(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Empty(t, lookup.calls, "no lookups for an empty batch")
}

package domain

import "time"

// TimeEntry represents a single tracked interval fetched from Toggl.
// Entries are read-only: they are fetched fresh on every run and never
// written back to the source.
type TimeEntry struct {
	ID              int64
	Description     string
	DurationSeconds int64 // negative while the entry is still running
	Start           time.Time
	Stop            *time.Time // nil while the entry is still running
}

// Billable reports whether the entry is eligible for submission: it must be
// stopped and have run for at least one minute. Sub-minute entries are
// treated as noise.
func (e TimeEntry) Billable() bool {
	return e.Stop != nil && e.DurationSeconds >= 60
}

// TaggedEntry is a TimeEntry whose description carried a work package tag.
// WorkPackageID holds the digits from the tag verbatim; Description is the
// original description with the tag and its separating whitespace stripped.
type TaggedEntry struct {
	Entry         TimeEntry
	WorkPackageID string
	Description   string
}

package journal

import "time"

// Run statuses recorded in the journal.
const (
	StatusCompleted = "completed"
	StatusDeclined  = "declined"
	StatusFailed    = "failed"
)

// Run represents one sync run. The journal is advisory history for the
// `history` command; duplicate detection always goes through the sink's
// comment field, never through this table.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Fetched    int
	Tagged     int
	Skipped    int
	Submitted  int
	Status     string
}

// Submission represents a single time entry posted during a run.
type Submission struct {
	ID            int64
	RunID         string
	TogglID       string
	WorkPackageID string
	Hours         string
	SpentOn       string
	Comment       string
	SubmittedAt   time.Time
}

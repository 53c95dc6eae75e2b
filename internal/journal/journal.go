package journal

import (
	"context"
	"database/sql"

	"toggl-opsync/internal/errors"
	"toggl-opsync/internal/journal/migrations"

	_ "modernc.org/sqlite"
)

// Repository defines the interface for journal operations
type Repository interface {
	// Write operations
	CreateRun(ctx context.Context, run *Run) error
	FinishRun(ctx context.Context, run *Run) error
	CreateSubmission(ctx context.Context, submission *Submission) error

	// Read operations
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	ListSubmissions(ctx context.Context, runID string) ([]*Submission, error)

	// Utility
	Close() error
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db *sql.DB
}

// New creates a new SQLite journal instance
func New(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open journal", err)
	}

	// Run migrations
	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// CreateRun records the start of a sync run
func (r *SQLiteRepository) CreateRun(ctx context.Context, run *Run) error {
	query := `
	INSERT INTO runs (id, started_at, finished_at, fetched, tagged, skipped, submitted, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, FormatTimeForDB(run.StartedAt), FormatTimePtrForDB(run.FinishedAt),
		run.Fetched, run.Tagged, run.Skipped, run.Submitted, run.Status)
	if err != nil {
		return errors.NewDatabaseError("create run", err)
	}
	return nil
}

// FinishRun updates a run's counters and final status
func (r *SQLiteRepository) FinishRun(ctx context.Context, run *Run) error {
	query := `
	UPDATE runs
	SET finished_at = ?, fetched = ?, tagged = ?, skipped = ?, submitted = ?, status = ?
	WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		FormatTimePtrForDB(run.FinishedAt), run.Fetched, run.Tagged,
		run.Skipped, run.Submitted, run.Status, run.ID)
	if err != nil {
		return errors.NewDatabaseError("finish run", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("run", run.ID)
	}
	return nil
}

// CreateSubmission records a single posted time entry
func (r *SQLiteRepository) CreateSubmission(ctx context.Context, submission *Submission) error {
	query := `
	INSERT INTO submissions (run_id, toggl_id, work_package_id, hours, spent_on, comment, submitted_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		submission.RunID, submission.TogglID, submission.WorkPackageID,
		submission.Hours, submission.SpentOn, submission.Comment,
		FormatTimeForDB(submission.SubmittedAt))
	if err != nil {
		return errors.NewDatabaseError("create submission", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.NewDatabaseError("get last insert ID", err)
	}
	submission.ID = id
	return nil
}

// ListRuns retrieves the most recent runs, newest first
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `
	SELECT id, started_at, finished_at, fetched, tagged, skipped, submitted, status
	FROM runs
	ORDER BY started_at DESC
	LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("query runs", err)
	}
	defer rows.Close()

	return ScanRuns(rows)
}

// ListSubmissions retrieves all submissions recorded for a run
func (r *SQLiteRepository) ListSubmissions(ctx context.Context, runID string) ([]*Submission, error) {
	query := `
	SELECT id, run_id, toggl_id, work_package_id, hours, spent_on, comment, submitted_at
	FROM submissions
	WHERE run_id = ?
	ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, errors.NewDatabaseError("query submissions", err)
	}
	defer rows.Close()

	return ScanSubmissions(rows)
}

package journal

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanRun scans a single run from a database row
func ScanRun(scanner Scanner) (*Run, error) {
	run := &Run{}
	var startedAt string
	var finishedAt *string

	err := scanner.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&run.Fetched,
		&run.Tagged,
		&run.Skipped,
		&run.Submitted,
		&run.Status,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt, err = ParseTimeFromDB(startedAt)
	if err != nil {
		return nil, err
	}
	run.FinishedAt, err = ParseTimePtrFromDB(finishedAt)
	if err != nil {
		return nil, err
	}

	return run, nil
}

// ScanRuns scans multiple runs from database rows
func ScanRuns(rows Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		run, err := ScanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// ScanSubmission scans a single submission from a database row
func ScanSubmission(scanner Scanner) (*Submission, error) {
	submission := &Submission{}
	var submittedAt string

	err := scanner.Scan(
		&submission.ID,
		&submission.RunID,
		&submission.TogglID,
		&submission.WorkPackageID,
		&submission.Hours,
		&submission.SpentOn,
		&submission.Comment,
		&submittedAt,
	)
	if err != nil {
		return nil, err
	}

	submission.SubmittedAt, err = ParseTimeFromDB(submittedAt)
	if err != nil {
		return nil, err
	}

	return submission, nil
}

// ScanSubmissions scans multiple submissions from database rows
func ScanSubmissions(rows Rows) ([]*Submission, error) {
	var submissions []*Submission
	for rows.Next() {
		submission, err := ScanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return submissions, nil
}

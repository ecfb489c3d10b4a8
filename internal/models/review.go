package models

import "time"

// Verdict is the binary classification of a reviewer's report.
type Verdict string

const (
	VerdictApproved         Verdict = "approved"
	VerdictChangesRequested Verdict = "changes_requested"
)

// ReviewRecord stores one reviewer's verdict for one iteration of the
// implementation cycle.
type ReviewRecord struct {
	ID         string
	RunID      string
	Iteration  int
	Reviewer   string
	Verdict    Verdict
	ReportPath string
	Summary    string
	CreatedAt  time.Time
}

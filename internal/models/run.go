package models

import "time"

// RunStatus represents the state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning            RunStatus = "running"
	RunStatusApproved           RunStatus = "approved"
	RunStatusCompletedWithNotes RunStatus = "completed_with_notes"
	RunStatusFailed             RunStatus = "failed"
)

// Scope describes how much of a product a run covers.
type Scope string

const (
	ScopeProduct Scope = "product"
	ScopeFeature Scope = "feature"
)

// PipelineRun records one end-to-end delivery pipeline execution against a
// target repository.
type PipelineRun struct {
	ID                 string
	ProductName        string
	TaskDescription    string
	Scope              Scope
	RepoOwner          string
	RepoName           string
	Status             RunStatus
	Iterations         int
	CodePath           string
	CodeReviewPath     string
	SecurityReviewPath string
	StartedAt          time.Time
	CompletedAt        *time.Time
}

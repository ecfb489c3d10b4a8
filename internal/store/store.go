package store

import (
	"context"

	"github.com/joescharf/devteam/internal/models"
)

// RunListFilter specifies filters for listing pipeline runs.
type RunListFilter struct {
	Status models.RunStatus
	Scope  models.Scope
	Limit  int
}

// Store defines the persistence interface for devteam.
type Store interface {
	// Pipeline runs
	CreateRun(ctx context.Context, run *models.PipelineRun) error
	GetRun(ctx context.Context, id string) (*models.PipelineRun, error)
	ListRuns(ctx context.Context, filter RunListFilter) ([]*models.PipelineRun, error)
	UpdateRun(ctx context.Context, run *models.PipelineRun) error

	// Review records
	CreateReview(ctx context.Context, review *models.ReviewRecord) error
	ListReviews(ctx context.Context, runID string) ([]*models.ReviewRecord, error)

	// Stage documents
	CreateDocument(ctx context.Context, doc *models.StageDocument) error
	ListDocuments(ctx context.Context, runID string) ([]*models.StageDocument, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

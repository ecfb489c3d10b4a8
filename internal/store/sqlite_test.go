package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/devteam/internal/models"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndGetRun(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := &models.PipelineRun{
		ProductName:     "Task Tracker",
		TaskDescription: "Build a task tracker",
		Scope:           models.ScopeProduct,
		RepoOwner:       "acme",
		RepoName:        "task-tracker",
	}
	require.NoError(t, s.CreateRun(ctx, run))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, models.RunStatusRunning, run.Status)
	assert.False(t, run.StartedAt.IsZero())

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "Task Tracker", got.ProductName)
	assert.Equal(t, models.ScopeProduct, got.Scope)
	assert.Equal(t, "acme", got.RepoOwner)
	assert.Nil(t, got.CompletedAt)
}

func TestGetRunNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetRun(context.Background(), "nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestUpdateRun(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := &models.PipelineRun{ProductName: "Widget"}
	require.NoError(t, s.CreateRun(ctx, run))

	now := time.Now().UTC()
	run.Status = models.RunStatusApproved
	run.Iterations = 2
	run.CodePath = ".dev-team/implementations/software_engineer_widget.py"
	run.CompletedAt = &now
	require.NoError(t, s.UpdateRun(ctx, run))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusApproved, got.Status)
	assert.Equal(t, 2, got.Iterations)
	assert.NotNil(t, got.CompletedAt)
}

func TestUpdateRunNotFound(t *testing.T) {
	s := setupTestStore(t)
	err := s.UpdateRun(context.Background(), &models.PipelineRun{ID: "missing"})
	assert.Error(t, err)
}

func TestListRunsFiltered(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, st := range []models.RunStatus{
		models.RunStatusApproved,
		models.RunStatusCompletedWithNotes,
		models.RunStatusApproved,
	} {
		run := &models.PipelineRun{ProductName: "p", Status: st}
		require.NoError(t, s.CreateRun(ctx, run))
	}

	all, err := s.ListRuns(ctx, RunListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	approved, err := s.ListRuns(ctx, RunListFilter{Status: models.RunStatusApproved})
	require.NoError(t, err)
	assert.Len(t, approved, 2)

	limited, err := s.ListRuns(ctx, RunListFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestReviewRecords(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := &models.PipelineRun{ProductName: "p"}
	require.NoError(t, s.CreateRun(ctx, run))

	r1 := &models.ReviewRecord{
		RunID:      run.ID,
		Iteration:  1,
		Reviewer:   "lead_engineer",
		Verdict:    models.VerdictChangesRequested,
		ReportPath: ".dev-team/code_reviews/lead_engineer_review_p.md",
	}
	r2 := &models.ReviewRecord{
		RunID:     run.ID,
		Iteration: 2,
		Reviewer:  "lead_engineer",
		Verdict:   models.VerdictApproved,
	}
	require.NoError(t, s.CreateReview(ctx, r1))
	require.NoError(t, s.CreateReview(ctx, r2))

	reviews, err := s.ListReviews(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, 1, reviews[0].Iteration)
	assert.Equal(t, models.VerdictChangesRequested, reviews[0].Verdict)
	assert.Equal(t, models.VerdictApproved, reviews[1].Verdict)
}

func TestStageDocuments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := &models.PipelineRun{ProductName: "p"}
	require.NoError(t, s.CreateRun(ctx, run))

	doc := &models.StageDocument{
		RunID: run.ID,
		Kind:  models.DocumentPRD,
		Path:  ".dev-team/docs/prd_p.md",
		Title: "PRD: p",
	}
	require.NoError(t, s.CreateDocument(ctx, doc))

	docs, err := s.ListDocuments(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, models.DocumentPRD, docs[0].Kind)
}

func TestMigrateIdempotent(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}

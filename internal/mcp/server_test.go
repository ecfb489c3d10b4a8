package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/devteam/internal/models"
	"github.com/joescharf/devteam/internal/pipeline"
	"github.com/joescharf/devteam/internal/store"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockStore implements store.Store for testing.
type mockStore struct {
	runs    []*models.PipelineRun
	reviews []*models.ReviewRecord
	docs    []*models.StageDocument

	listRunsErr error
}

func (m *mockStore) CreateRun(_ context.Context, run *models.PipelineRun) error {
	m.runs = append(m.runs, run)
	return nil
}
func (m *mockStore) GetRun(_ context.Context, id string) (*models.PipelineRun, error) {
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("run not found: %s", id)
}
func (m *mockStore) ListRuns(_ context.Context, filter store.RunListFilter) ([]*models.PipelineRun, error) {
	if m.listRunsErr != nil {
		return nil, m.listRunsErr
	}
	if filter.Status == "" {
		return m.runs, nil
	}
	var filtered []*models.PipelineRun
	for _, r := range m.runs {
		if r.Status == filter.Status {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}
func (m *mockStore) UpdateRun(_ context.Context, _ *models.PipelineRun) error { return nil }
func (m *mockStore) CreateReview(_ context.Context, r *models.ReviewRecord) error {
	m.reviews = append(m.reviews, r)
	return nil
}
func (m *mockStore) ListReviews(_ context.Context, runID string) ([]*models.ReviewRecord, error) {
	var out []*models.ReviewRecord
	for _, r := range m.reviews {
		if r.RunID == runID {
			out = append(out, r)
		}
	}
	return out, nil
}
func (m *mockStore) CreateDocument(_ context.Context, d *models.StageDocument) error {
	m.docs = append(m.docs, d)
	return nil
}
func (m *mockStore) ListDocuments(_ context.Context, runID string) ([]*models.StageDocument, error) {
	var out []*models.StageDocument
	for _, d := range m.docs {
		if d.RunID == runID {
			out = append(out, d)
		}
	}
	return out, nil
}
func (m *mockStore) Migrate(_ context.Context) error { return nil }
func (m *mockStore) Close() error                    { return nil }

type mockLauncher struct {
	mu     sync.Mutex
	inputs []pipeline.PipelineInput
	done   chan struct{}
}

func (l *mockLauncher) Run(_ context.Context, in pipeline.PipelineInput) (*pipeline.PipelineResult, error) {
	l.mu.Lock()
	l.inputs = append(l.inputs, in)
	l.mu.Unlock()
	close(l.done)
	return &pipeline.PipelineResult{}, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func callToolReq(name string, args map[string]any) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		tc, ok := c.(mcpgo.TextContent)
		if ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestListRunsTool(t *testing.T) {
	st := &mockStore{runs: []*models.PipelineRun{
		{ID: "r1", ProductName: "Widget", Status: models.RunStatusApproved, Iterations: 2},
		{ID: "r2", ProductName: "Tracker", Status: models.RunStatusFailed},
	}}
	s := NewServer(st, nil)

	result, err := s.handleListRuns(context.Background(), callToolReq("devteam_list_runs", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var runs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, "Widget", runs[0]["product_name"])
	assert.Equal(t, float64(2), runs[0]["iterations"])
}

func TestListRunsToolStatusFilter(t *testing.T) {
	st := &mockStore{runs: []*models.PipelineRun{
		{ID: "r1", Status: models.RunStatusApproved},
		{ID: "r2", Status: models.RunStatusRunning},
	}}
	s := NewServer(st, nil)

	result, err := s.handleListRuns(context.Background(),
		callToolReq("devteam_list_runs", map[string]any{"status": "running"}))
	require.NoError(t, err)

	var runs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "r2", runs[0]["id"])
}

func TestRunStatusTool(t *testing.T) {
	st := &mockStore{
		runs: []*models.PipelineRun{{
			ID:          "r1",
			ProductName: "Widget",
			Status:      models.RunStatusApproved,
			Iterations:  1,
			RepoOwner:   "acme",
			RepoName:    "widget",
			CodePath:    ".dev-team/implementations/software_engineer_widget.py",
		}},
		reviews: []*models.ReviewRecord{{
			RunID: "r1", Iteration: 1, Reviewer: "lead_engineer",
			Verdict: models.VerdictApproved, ReportPath: "review.md",
		}},
		docs: []*models.StageDocument{{
			RunID: "r1", Kind: models.DocumentPRD, Path: "prd.md", Title: "PRD: Widget",
		}},
	}
	s := NewServer(st, nil)

	result, err := s.handleRunStatus(context.Background(),
		callToolReq("devteam_run_status", map[string]any{"run_id": "r1"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))

	run := out["run"].(map[string]any)
	assert.Equal(t, "acme/widget", run["repo"])
	assert.Equal(t, "approved", run["status"])

	artifacts := out["artifacts"].(map[string]any)
	assert.Equal(t, ".dev-team/implementations/software_engineer_widget.py", artifacts["code"])

	reviews := out["reviews"].([]any)
	require.Len(t, reviews, 1)
	docs := out["documents"].([]any)
	require.Len(t, docs, 1)
}

func TestRunStatusToolMissingParam(t *testing.T) {
	s := NewServer(&mockStore{}, nil)
	result, err := s.handleRunStatus(context.Background(), callToolReq("devteam_run_status", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestRunStatusToolUnknownRun(t *testing.T) {
	s := NewServer(&mockStore{}, nil)
	result, err := s.handleRunStatus(context.Background(),
		callToolReq("devteam_run_status", map[string]any{"run_id": "nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestClassifyReviewTool(t *testing.T) {
	s := NewServer(&mockStore{}, nil)

	tests := []struct {
		name   string
		report string
		kind   string
		want   string
	}{
		{"code approved", "Review Status: APPROVED", "code", "approved"},
		{"code negative precedence", "APPROVED but changes requested", "code", "changes_requested"},
		{"no marker fails closed", "looks fine to me", "code", "changes_requested"},
		{"security critical", "APPROVED. One critical note.", "security", "changes_requested"},
		{"security high vulnerability", "APPROVED despite a High severity vulnerability", "security", "changes_requested"},
		{"default kind is code", "critical refactor done. APPROVED", "", "approved"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{"report": tt.report}
			if tt.kind != "" {
				args["kind"] = tt.kind
			}
			result, err := s.handleClassifyReview(context.Background(),
				callToolReq("devteam_classify_review", args))
			require.NoError(t, err)
			require.False(t, result.IsError)

			var out map[string]string
			require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
			assert.Equal(t, tt.want, out["verdict"])
		})
	}
}

func TestStartRunTool(t *testing.T) {
	launcher := &mockLauncher{done: make(chan struct{})}
	s := NewServer(&mockStore{}, launcher)

	result, err := s.handleStartRun(context.Background(),
		callToolReq("devteam_start_run", map[string]any{
			"product_name": "Widget",
			"scope":        "product",
			"repo_owner":   "acme",
			"repo_name":    "widget",
		}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	select {
	case <-launcher.done:
	case <-time.After(time.Second):
		t.Fatal("launcher was not invoked")
	}

	launcher.mu.Lock()
	defer launcher.mu.Unlock()
	require.Len(t, launcher.inputs, 1)
	assert.Equal(t, "Widget", launcher.inputs[0].ProductName)
	assert.Equal(t, models.ScopeProduct, launcher.inputs[0].Scope)
}

func TestStartRunToolWithoutLauncher(t *testing.T) {
	s := NewServer(&mockStore{}, nil)
	result, err := s.handleStartRun(context.Background(),
		callToolReq("devteam_start_run", map[string]any{"product_name": "Widget"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestMCPServerRegistersTools(t *testing.T) {
	s := NewServer(&mockStore{}, nil)
	srv := s.MCPServer()
	require.NotNil(t, srv)
}

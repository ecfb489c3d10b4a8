package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/devteam/internal/api"
	"github.com/joescharf/devteam/internal/models"
	"github.com/joescharf/devteam/internal/pipeline"
	"github.com/joescharf/devteam/internal/store"
)

// Server wraps the devteam data layer and exposes it as MCP tools.
type Server struct {
	store    store.Store
	launcher api.Launcher
}

// NewServer creates the MCP server wrapper. The launcher may be nil; the
// start tool then reports that no API key is configured.
func NewServer(s store.Store, launcher api.Launcher) *Server {
	return &Server{store: s, launcher: launcher}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("devteam", "1.0.0", server.WithToolCapabilities(true))

	// Register all tools
	srv.AddTool(s.listRunsTool())
	srv.AddTool(s.runStatusTool())
	srv.AddTool(s.classifyReviewTool())
	srv.AddTool(s.startRunTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// devteam_list_runs
func (s *Server) listRunsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("devteam_list_runs",
		mcp.WithDescription("List delivery pipeline runs. Returns a JSON array with id, product name, status (running/approved/completed_with_notes/failed), iterations, and timestamps."),
		mcp.WithString("status", mcp.Description("Status filter: running, approved, completed_with_notes, failed")),
	)
	return tool, s.handleListRuns
}

func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := store.RunListFilter{
		Status: models.RunStatus(request.GetString("status", "")),
	}
	runs, err := s.store.ListRuns(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}

	type runOut struct {
		ID          string `json:"id"`
		ProductName string `json:"product_name"`
		Scope       string `json:"scope"`
		Status      string `json:"status"`
		Iterations  int    `json:"iterations"`
		StartedAt   string `json:"started_at"`
		CompletedAt string `json:"completed_at,omitempty"`
	}

	out := make([]runOut, len(runs))
	for i, r := range runs {
		out[i] = runOut{
			ID:          r.ID,
			ProductName: r.ProductName,
			Scope:       string(r.Scope),
			Status:      string(r.Status),
			Iterations:  r.Iterations,
			StartedAt:   r.StartedAt.Format(time.RFC3339),
		}
		if r.CompletedAt != nil {
			out[i].CompletedAt = r.CompletedAt.Format(time.RFC3339)
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal runs: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// devteam_run_status
func (s *Server) runStatusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("devteam_run_status",
		mcp.WithDescription("Get detailed status for one pipeline run: artifact paths in the target repository, per-iteration reviewer verdicts, and stage documents."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("Run ID")),
	)
	return tool, s.handleRunStatus
}

func (s *Server) handleRunStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := request.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: run_id"), nil
	}

	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run not found: %s", runID)), nil
	}

	reviews, _ := s.store.ListReviews(ctx, runID)
	docs, _ := s.store.ListDocuments(ctx, runID)

	reviewsOut := make([]map[string]any, len(reviews))
	for i, r := range reviews {
		reviewsOut[i] = map[string]any{
			"iteration":   r.Iteration,
			"reviewer":    r.Reviewer,
			"verdict":     string(r.Verdict),
			"report_path": r.ReportPath,
		}
	}

	docsOut := make([]map[string]any, len(docs))
	for i, d := range docs {
		docsOut[i] = map[string]any{
			"kind":  string(d.Kind),
			"path":  d.Path,
			"title": d.Title,
		}
	}

	result := map[string]any{
		"run": map[string]any{
			"id":           run.ID,
			"product_name": run.ProductName,
			"scope":        string(run.Scope),
			"status":       string(run.Status),
			"iterations":   run.Iterations,
			"repo":         run.RepoOwner + "/" + run.RepoName,
		},
		"artifacts": map[string]any{
			"code":            run.CodePath,
			"code_review":     run.CodeReviewPath,
			"security_review": run.SecurityReviewPath,
		},
		"reviews":   reviewsOut,
		"documents": docsOut,
	}

	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// devteam_classify_review
func (s *Server) classifyReviewTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("devteam_classify_review",
		mcp.WithDescription("Classify a review report into an approved or changes_requested verdict. Reviewer kind selects the marker set: code reviews reject on change requests, security reviews additionally reject on critical findings or high-severity vulnerabilities. Reports without an explicit approval are classified changes_requested."),
		mcp.WithString("report", mcp.Required(), mcp.Description("The review report text")),
		mcp.WithString("kind", mcp.Description("Reviewer kind: code (default) or security")),
	)
	return tool, s.handleClassifyReview
}

func (s *Server) handleClassifyReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := request.RequireString("report")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: report"), nil
	}

	var verdict models.Verdict
	switch request.GetString("kind", "code") {
	case "security":
		verdict = pipeline.ClassifySecurityReview(report)
	default:
		verdict = pipeline.ClassifyCodeReview(report)
	}

	data, _ := json.Marshal(map[string]string{"verdict": string(verdict)})
	return mcp.NewToolResultText(string(data)), nil
}

// devteam_start_run
func (s *Server) startRunTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("devteam_start_run",
		mcp.WithDescription("Start a delivery pipeline run: discovery (PRD), architecture, then the iterative implementation and review cycle. Runs in the background; poll devteam_list_runs for progress."),
		mcp.WithString("product_name", mcp.Required(), mcp.Description("Product or feature name")),
		mcp.WithString("product_context", mcp.Description("What to build and why")),
		mcp.WithString("target_audience", mcp.Description("Who it is for")),
		mcp.WithString("scope", mcp.Description("Run scope: product or feature (default feature)")),
		mcp.WithString("repo_owner", mcp.Description("Target GitHub repository owner")),
		mcp.WithString("repo_name", mcp.Description("Target GitHub repository name")),
	)
	return tool, s.handleStartRun
}

func (s *Server) handleStartRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.launcher == nil {
		return mcp.NewToolResultError("pipeline not configured: missing API key"), nil
	}

	productName, err := request.RequireString("product_name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: product_name"), nil
	}

	in := pipeline.PipelineInput{
		ProductName:    productName,
		ProductContext: request.GetString("product_context", ""),
		TargetAudience: request.GetString("target_audience", ""),
		Scope:          models.Scope(request.GetString("scope", "")),
		RepoOwner:      request.GetString("repo_owner", ""),
		RepoName:       request.GetString("repo_name", ""),
	}

	// The run outlives the tool call; it gets its own context.
	go func() {
		_, _ = s.launcher.Run(context.Background(), in)
	}()

	data, _ := json.Marshal(map[string]string{
		"status":       "accepted",
		"product_name": productName,
	})
	return mcp.NewToolResultText(string(data)), nil
}

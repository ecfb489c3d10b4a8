package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/joescharf/devteam/internal/agents"
	"github.com/joescharf/devteam/internal/models"
)

// ReviewDecision is the structured outcome of the review decision step.
// The divergence flag is decided by the step itself and returned as data;
// downstream control flow never scans prose for it.
type ReviewDecision struct {
	ReviewStatus            string   `json:"review_status"`
	NeedsArchitectureUpdate bool     `json:"needs_architecture_update"`
	Notes                   string   `json:"notes"`
	ActionItems             []string `json:"action_items"`
}

// Verdict converts the decision's status field, failing closed on anything
// other than an explicit approval.
func (d *ReviewDecision) Verdict() models.Verdict {
	if strings.EqualFold(strings.TrimSpace(d.ReviewStatus), "approved") {
		return models.VerdictApproved
	}
	return models.VerdictChangesRequested
}

// CodeReviewResult collects the outputs of the standalone review workflow.
type CodeReviewResult struct {
	Report              string
	Changes             string
	Decision            ReviewDecision
	ArchitectureUpdates string
}

// CodeReview is the standalone lead-engineer review workflow:
// review → identify changes → decide → optionally propose architecture-doc
// updates when the implementation intentionally diverged.
type CodeReview struct {
	llm Completer
}

// NewCodeReview creates the review workflow.
func NewCodeReview(llmClient Completer) *CodeReview {
	return &CodeReview{llm: llmClient}
}

// Run reviews code against an architecture document.
func (cr *CodeReview) Run(ctx context.Context, code, architectureDoc string) (*CodeReviewResult, error) {
	report, err := cr.llm.Complete(ctx, agents.LeadEngineerInstructions,
		buildStructureReviewPrompt(code, architectureDoc))
	if err != nil {
		return nil, fmt.Errorf("structure review: %w", err)
	}

	changes, err := cr.llm.Complete(ctx, agents.LeadEngineerInstructions,
		buildIdentifyChangesPrompt(report))
	if err != nil {
		return nil, fmt.Errorf("identify changes: %w", err)
	}

	var decision ReviewDecision
	if err := cr.llm.CompleteJSON(ctx, agents.LeadEngineerInstructions,
		agents.BuildDecisionPrompt(changes), &decision); err != nil {
		return nil, fmt.Errorf("review decision: %w", err)
	}

	result := &CodeReviewResult{
		Report:   report,
		Changes:  changes,
		Decision: decision,
	}

	if decision.NeedsArchitectureUpdate {
		updates, err := cr.llm.Complete(ctx, agents.LeadEngineerInstructions,
			buildArchitectureUpdatePrompt(report, architectureDoc))
		if err != nil {
			return nil, fmt.Errorf("architecture update: %w", err)
		}
		result.ArchitectureUpdates = updates
	}

	return result, nil
}

func buildStructureReviewPrompt(code, architectureDoc string) string {
	var b strings.Builder
	b.WriteString("Review this code's structure and architecture alignment.\n\n")
	if architectureDoc != "" {
		b.WriteString("## Architecture Document\n")
		b.WriteString(architectureDoc)
		b.WriteString("\n\n")
	}
	b.WriteString("## Code\n")
	b.WriteString(code)
	b.WriteString("\n\nReport: **Structure Analysis**, **Architecture Alignment**, **Quality Assessment**.\n")
	return b.String()
}

func buildIdentifyChangesPrompt(report string) string {
	var b strings.Builder
	b.WriteString("Based on the review below, identify:\n")
	b.WriteString("- **Necessary Changes**: security issues, bugs, breaking changes, missing error handling on critical paths, each with severity (Critical/High/Medium)\n")
	b.WriteString("- **Optional Improvements**: style, tests, docs, minor refactors, each with impact (High/Medium/Low)\n")
	b.WriteString("- **Summary**\n\n")
	b.WriteString("## Review\n")
	b.WriteString(report)
	return b.String()
}

func buildArchitectureUpdatePrompt(report, architectureDoc string) string {
	var b strings.Builder
	b.WriteString("The implementation intentionally diverged from the documented architecture. Propose the documentation changes needed to bring the architecture doc back in line with reality, with a rationale for each.\n\n")
	b.WriteString("## Current Architecture Document\n")
	b.WriteString(architectureDoc)
	b.WriteString("\n\n## Review Findings\n")
	b.WriteString(report)
	return b.String()
}

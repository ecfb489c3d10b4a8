package pipeline

import (
	"context"
	"fmt"

	"github.com/joescharf/devteam/internal/agents"
	"github.com/joescharf/devteam/internal/models"
)

// DiscoveryInput describes what the discovery stage should investigate.
// Research runs only when the explicit flags are set, never inferred from
// the request text.
type DiscoveryInput struct {
	ProductName              string
	ProductContext           string
	TargetAudience           string
	Scope                    models.Scope
	EnableResearch           bool
	EnableCompetitorAnalysis bool
}

// DiscoveryResult is the stage's output: the PRD content and where it was
// written in the target repository.
type DiscoveryResult struct {
	PRD      string
	PRDPath  string
	Analysis string
	Research string
}

// Discovery runs analysis → optional research → synthesis → PRD creation
// and writes the PRD to the target repository.
type Discovery struct {
	llm Completer
	ws  Workspace
}

// NewDiscovery creates the discovery stage.
func NewDiscovery(llmClient Completer, ws Workspace) *Discovery {
	return &Discovery{llm: llmClient, ws: ws}
}

// Run executes the stage. The target repository is created here if it
// does not exist yet: discovery is the first stage to write to it.
func (d *Discovery) Run(ctx context.Context, in DiscoveryInput) (*DiscoveryResult, error) {
	if in.Scope == "" {
		in.Scope = models.ScopeFeature
	}

	if err := d.ws.EnsureRepo(ctx, "Delivery pipeline for "+in.ProductName); err != nil {
		return nil, fmt.Errorf("ensure repository: %w", err)
	}

	analysis, err := d.llm.Complete(ctx, agents.RequirementsAnalystInstructions,
		agents.BuildAnalysisPrompt(in.ProductName, in.ProductContext, in.TargetAudience, in.Scope))
	if err != nil {
		return nil, fmt.Errorf("requirements analysis: %w", err)
	}

	research := ""
	if in.EnableResearch || in.EnableCompetitorAnalysis {
		research, err = d.llm.Complete(ctx, agents.ResearchInstructions,
			agents.BuildResearchPrompt(in.ProductName, in.ProductContext, in.EnableCompetitorAnalysis))
		if err != nil {
			return nil, fmt.Errorf("research: %w", err)
		}
	}

	synthesis, err := d.llm.Complete(ctx, agents.ProductLeadInstructions,
		agents.BuildSynthesisPrompt(analysis, research))
	if err != nil {
		return nil, fmt.Errorf("synthesis: %w", err)
	}

	prd, err := d.llm.Complete(ctx, agents.ProductLeadInstructions,
		agents.BuildPRDPrompt(in.ProductName, in.ProductContext, synthesis, in.Scope))
	if err != nil {
		return nil, fmt.Errorf("prd creation: %w", err)
	}

	path, err := d.ws.PutFile(ctx, PathsFor(in.ProductName).PRD, prd,
		"docs: add PRD for "+in.ProductName)
	if err != nil {
		return nil, fmt.Errorf("save prd: %w", err)
	}

	return &DiscoveryResult{
		PRD:      prd,
		PRDPath:  path,
		Analysis: analysis,
		Research: research,
	}, nil
}

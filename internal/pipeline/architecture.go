package pipeline

import (
	"context"
	"fmt"

	"github.com/joescharf/devteam/internal/agents"
)

// ArchitectureInput carries the PRD into the architecture stage. The PRD
// location travels as a typed field, never parsed out of prose.
type ArchitectureInput struct {
	ProductName string
	PRDContent  string
	PRDPath     string
}

// ArchitectureResult is the stage's output.
type ArchitectureResult struct {
	Document string
	Path     string
}

// Architecture has the lead engineer turn a PRD into a technical
// architecture document with implementation tickets.
type Architecture struct {
	llm Completer
	ws  Workspace
}

// NewArchitecture creates the architecture stage.
func NewArchitecture(llmClient Completer, ws Workspace) *Architecture {
	return &Architecture{llm: llmClient, ws: ws}
}

// Run executes the stage.
func (a *Architecture) Run(ctx context.Context, in ArchitectureInput) (*ArchitectureResult, error) {
	doc, err := a.llm.Complete(ctx, agents.LeadEngineerInstructions,
		agents.BuildArchitecturePrompt(in.ProductName, in.PRDContent))
	if err != nil {
		return nil, fmt.Errorf("architecture design: %w", err)
	}

	path, err := a.ws.PutFile(ctx, PathsFor(in.ProductName).Architecture, doc,
		"docs: add architecture for "+in.ProductName)
	if err != nil {
		return nil, fmt.Errorf("save architecture: %w", err)
	}

	return &ArchitectureResult{Document: doc, Path: path}, nil
}

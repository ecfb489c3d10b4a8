package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joescharf/devteam/internal/models"
	"github.com/joescharf/devteam/internal/store"
)

// PipelineInput describes a full delivery pipeline run.
type PipelineInput struct {
	ProductName              string
	ProductContext           string
	TargetAudience           string
	Scope                    models.Scope
	RepoOwner                string
	RepoName                 string
	EnableResearch           bool
	EnableCompetitorAnalysis bool
}

// PipelineResult summarizes a completed pipeline run.
type PipelineResult struct {
	Run          *models.PipelineRun
	PRDPath      string
	Architecture string
	Outcome      *CycleOutcome
}

// Pipeline chains discovery, architecture, and the implementation cycle,
// persisting the run, its stage documents, and every review verdict.
type Pipeline struct {
	discovery *Discovery
	arch      *Architecture
	impl      *Implementation
	store     store.Store
	log       *slog.Logger
}

// NewPipeline assembles the full pipeline over shared stages and a store.
func NewPipeline(discovery *Discovery, arch *Architecture, impl *Implementation, st store.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{discovery: discovery, arch: arch, impl: impl, store: st, log: logger}
}

// Run executes the pipeline end to end. The run record is created before
// the first stage and updated to a terminal status on every exit path.
func (p *Pipeline) Run(ctx context.Context, in PipelineInput) (*PipelineResult, error) {
	if in.Scope == "" {
		in.Scope = models.ScopeFeature
	}

	run := &models.PipelineRun{
		ProductName:     in.ProductName,
		TaskDescription: in.ProductContext,
		Scope:           in.Scope,
		RepoOwner:       in.RepoOwner,
		RepoName:        in.RepoName,
		Status:          models.RunStatusRunning,
	}
	if err := p.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	result, err := p.execute(ctx, run, in)
	if err != nil {
		p.finish(run, models.RunStatusFailed)
		return nil, err
	}
	return result, nil
}

func (p *Pipeline) execute(ctx context.Context, run *models.PipelineRun, in PipelineInput) (*PipelineResult, error) {
	p.log.Info("discovery stage starting", "run", run.ID, "product", in.ProductName)
	disc, err := p.discovery.Run(ctx, DiscoveryInput{
		ProductName:              in.ProductName,
		ProductContext:           in.ProductContext,
		TargetAudience:           in.TargetAudience,
		Scope:                    in.Scope,
		EnableResearch:           in.EnableResearch,
		EnableCompetitorAnalysis: in.EnableCompetitorAnalysis,
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}
	p.recordDocument(ctx, run.ID, models.DocumentPRD, disc.PRDPath, "PRD: "+in.ProductName)

	p.log.Info("architecture stage starting", "run", run.ID)
	arch, err := p.arch.Run(ctx, ArchitectureInput{
		ProductName: in.ProductName,
		PRDContent:  disc.PRD,
		PRDPath:     disc.PRDPath,
	})
	if err != nil {
		return nil, fmt.Errorf("architecture: %w", err)
	}
	p.recordDocument(ctx, run.ID, models.DocumentArchitecture, arch.Path, "Architecture: "+in.ProductName)

	// Persist each reviewer verdict as it lands so partial runs still
	// leave an audit trail.
	p.impl.OnReview = func(iteration int, reviewer string, verdict models.Verdict, locator, summary string) {
		rec := &models.ReviewRecord{
			RunID:      run.ID,
			Iteration:  iteration,
			Reviewer:   reviewer,
			Verdict:    verdict,
			ReportPath: locator,
			Summary:    summary,
		}
		if err := p.store.CreateReview(ctx, rec); err != nil {
			p.log.Warn("record review failed", "run", run.ID, "reviewer", reviewer, "error", err)
		}
	}

	p.log.Info("implementation cycle starting", "run", run.ID)
	outcome, err := p.impl.Run(ctx, ImplementationInput{
		ProductName:       in.ProductName,
		TaskDescription:   in.ProductContext,
		TechnicalDocument: arch.Document,
	})
	if err != nil {
		return nil, fmt.Errorf("implementation: %w", err)
	}

	run.Iterations = outcome.Iterations
	run.CodePath = outcome.Paths.Code
	run.CodeReviewPath = outcome.Paths.CodeReview
	run.SecurityReviewPath = outcome.Paths.SecurityReview
	p.finish(run, outcome.Status)

	p.log.Info("pipeline finished", "run", run.ID,
		"status", run.Status, "iterations", run.Iterations)

	return &PipelineResult{
		Run:          run,
		PRDPath:      disc.PRDPath,
		Architecture: arch.Document,
		Outcome:      outcome,
	}, nil
}

func (p *Pipeline) recordDocument(ctx context.Context, runID string, kind models.DocumentKind, path, title string) {
	doc := &models.StageDocument{RunID: runID, Kind: kind, Path: path, Title: title}
	if err := p.store.CreateDocument(ctx, doc); err != nil {
		p.log.Warn("record document failed", "run", runID, "kind", kind, "error", err)
	}
}

// finish marks the run terminal. Persistence runs on a background context
// so a canceled pipeline context still gets its status written.
func (p *Pipeline) finish(run *models.PipelineRun, status models.RunStatus) {
	now := time.Now().UTC()
	run.Status = status
	run.CompletedAt = &now

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.UpdateRun(ctx, run); err != nil {
		p.log.Warn("update run failed", "run", run.ID, "error", err)
	}
}

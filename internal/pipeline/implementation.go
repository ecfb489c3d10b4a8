package pipeline

import (
	"context"
	"fmt"

	"github.com/joescharf/devteam/internal/agents"
	"github.com/joescharf/devteam/internal/llm"
	"github.com/joescharf/devteam/internal/models"
)

// ImplementationInput carries the architecture into the implementation
// cycle.
type ImplementationInput struct {
	ProductName       string
	TaskDescription   string
	TechnicalDocument string
}

// CycleOutcome summarizes a finished implementation cycle. The cap being
// reached is a normal outcome: Status is completed_with_notes and the
// locators are still populated.
type CycleOutcome struct {
	Status         models.RunStatus
	Iterations     int
	Paths          ArtifactPaths
	Verdicts       map[string]models.Verdict
	ReviewLocators map[string]string
}

// ReviewHook observes each recorded review, e.g. to persist it.
type ReviewHook func(iteration int, reviewer string, verdict models.Verdict, locator, summary string)

// Implementation wires the approval loop with the software engineer
// producer and the lead engineer + security engineer reviewers. Agents
// mutate the target repository through the MCP toolset; verdicts and
// locators travel as typed values, not prose markers.
type Implementation struct {
	runner AgentRunner
	tools  llm.Toolset
	ws     Workspace
	cfg    Config

	// OnReview, when set, is invoked for every recorded review.
	OnReview ReviewHook
}

// NewImplementation creates the implementation cycle stage.
func NewImplementation(runner AgentRunner, toolset llm.Toolset, ws Workspace, cfg Config) *Implementation {
	return &Implementation{runner: runner, tools: toolset, ws: ws, cfg: cfg}
}

// Run executes the bounded produce → review → revise cycle.
func (im *Implementation) Run(ctx context.Context, in ImplementationInput) (*CycleOutcome, error) {
	paths := PathsFor(in.ProductName)

	producer := ProducerFunc(agents.RoleSoftwareEngineer,
		func(ctx context.Context, state *CycleState) (string, error) {
			// Repo setup happens once; EnsureRepo only creates on a failed
			// lookup, so re-running it on revisions is harmless.
			if state.Iteration == 1 {
				if err := im.ws.EnsureRepo(ctx, "Implementation for "+in.ProductName); err != nil {
					return "", err
				}
			}

			prompt := agents.BuildDevelopmentPrompt(agents.DevelopmentPromptInput{
				ProductName:        in.ProductName,
				TaskDescription:    in.TaskDescription,
				TechnicalDocument:  in.TechnicalDocument,
				RepoOwner:          im.ws.Owner(),
				RepoName:           im.ws.Repo(),
				CodePath:           paths.Code,
				CodeReviewPath:     paths.CodeReview,
				SecurityReviewPath: paths.SecurityReview,
				Iteration:          state.Iteration,
			})
			if _, err := im.runner.RunWithTools(ctx, agents.SoftwareEngineerInstructions, prompt, im.tools); err != nil {
				return "", fmt.Errorf("development: %w", err)
			}
			return paths.Code, nil
		})

	codeReviewer := ReviewerFunc(agents.RoleLeadEngineer,
		func(ctx context.Context, state *CycleState) (string, models.Verdict, error) {
			prompt := agents.BuildCodeReviewPrompt(agents.ReviewPromptInput{
				RepoOwner:  im.ws.Owner(),
				RepoName:   im.ws.Repo(),
				CodePath:   state.ArtifactLocator,
				ReportPath: paths.CodeReview,
				Iteration:  state.Iteration,
			})
			report, err := im.runner.RunWithTools(ctx, agents.LeadEngineerInstructions, prompt, im.tools)
			if err != nil {
				return paths.CodeReview, models.VerdictChangesRequested, fmt.Errorf("code review: %w", err)
			}

			verdict := ClassifyCodeReview(report)
			im.notify(state.Iteration, agents.RoleLeadEngineer, verdict, paths.CodeReview, report)
			return paths.CodeReview, verdict, nil
		})

	securityReviewer := ReviewerFunc(agents.RoleSecurityEngineer,
		func(ctx context.Context, state *CycleState) (string, models.Verdict, error) {
			prompt := agents.BuildSecurityReviewPrompt(agents.ReviewPromptInput{
				RepoOwner:      im.ws.Owner(),
				RepoName:       im.ws.Repo(),
				CodePath:       state.ArtifactLocator,
				ReportPath:     paths.SecurityReview,
				Iteration:      state.Iteration,
				PriorReviewRef: state.ReviewLocators[agents.RoleLeadEngineer],
			})
			report, err := im.runner.RunWithTools(ctx, agents.SecurityEngineerInstructions, prompt, im.tools)
			if err != nil {
				return paths.SecurityReview, models.VerdictChangesRequested, fmt.Errorf("security review: %w", err)
			}

			verdict := ClassifySecurityReview(report)
			im.notify(state.Iteration, agents.RoleSecurityEngineer, verdict, paths.SecurityReview, report)
			return paths.SecurityReview, verdict, nil
		})

	loop := NewApprovalLoop(producer, []Reviewer{codeReviewer, securityReviewer}, im.cfg)
	res, err := loop.Run(ctx)
	if err != nil {
		return nil, err
	}

	status := models.RunStatusCompletedWithNotes
	if res.Approved {
		status = models.RunStatusApproved
	}

	return &CycleOutcome{
		Status:         status,
		Iterations:     res.Iterations,
		Paths:          paths,
		Verdicts:       res.State.Verdicts,
		ReviewLocators: res.State.ReviewLocators,
	}, nil
}

func (im *Implementation) notify(iteration int, reviewer string, verdict models.Verdict, locator, summary string) {
	if im.OnReview != nil {
		im.OnReview(iteration, reviewer, verdict, locator, summary)
	}
}

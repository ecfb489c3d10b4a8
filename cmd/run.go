package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/devteam/internal/agents"
	"github.com/joescharf/devteam/internal/models"
	"github.com/joescharf/devteam/internal/output"
	"github.com/joescharf/devteam/internal/pipeline"
)

var (
	runContext            string
	runAudience           string
	runScope              string
	runOwner              string
	runRepo               string
	runResearch           bool
	runCompetitorAnalysis bool
)

var runCmd = &cobra.Command{
	Use:   "run <product-name>",
	Short: "Run the full delivery pipeline: discovery, architecture, implementation",
	Long: `Run the full pipeline for a product or feature.

The product lead drafts a PRD, the lead engineer designs the
architecture, then the software engineer implements it under an
iterative review cycle. All artifacts are committed to the target
GitHub repository under .dev-team/.

Exit codes: 0 approved, 2 completed without approval, 1 error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipelineRun(cmd, args[0])
	},
}

func init() {
	runCmd.Flags().StringVarP(&runContext, "context", "c", "", "What to build and why")
	runCmd.Flags().StringVarP(&runAudience, "audience", "a", "", "Target audience")
	runCmd.Flags().StringVar(&runScope, "scope", "feature", "Run scope: product or feature")
	runCmd.Flags().StringVar(&runOwner, "owner", "", "Target GitHub repository owner")
	runCmd.Flags().StringVar(&runRepo, "repo", "", "Target GitHub repository name (default derived from product name)")
	runCmd.Flags().BoolVar(&runResearch, "research", false, "Run market research during discovery")
	runCmd.Flags().BoolVar(&runCompetitorAnalysis, "competitor-analysis", false, "Include competitor analysis in research")
	rootCmd.AddCommand(runCmd)
}

func runPipelineRun(cmd *cobra.Command, productName string) error {
	ctx := cmd.Context()

	owner, repo, err := repoTarget(runOwner, runRepo, productName)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would run pipeline for %q against %s/%s", productName, owner, repo)
		return nil
	}

	s, err := getStore()
	if err != nil {
		return err
	}

	stack, err := newAgentStack(ctx, owner, repo)
	if err != nil {
		return err
	}
	defer stack.Close()

	p := pipeline.NewPipeline(
		pipeline.NewDiscovery(stack.llm, stack.ws),
		pipeline.NewArchitecture(stack.llm, stack.ws),
		pipeline.NewImplementation(stack.llm, stack.toolset, stack.ws, loopConfig()),
		s, nil,
	)

	ui.Info("Running pipeline for %s (%s) against %s", productName, runScope, stack.ws.Slug())

	res, err := p.Run(ctx, pipeline.PipelineInput{
		ProductName:              productName,
		ProductContext:           runContext,
		TargetAudience:           runAudience,
		Scope:                    models.Scope(runScope),
		RepoOwner:                owner,
		RepoName:                 repo,
		EnableResearch:           runResearch,
		EnableCompetitorAnalysis: runCompetitorAnalysis,
	})
	if err != nil {
		return err
	}

	printOutcome(res.Run, res.Outcome)

	if res.Run.Status != models.RunStatusApproved {
		return fmt.Errorf("%s after %d iteration(s): %w",
			res.Run.Status, res.Run.Iterations, errNotApproved)
	}
	return nil
}

// printOutcome reports the final status, iteration count, and every
// artifact locator regardless of approval.
func printOutcome(run *models.PipelineRun, outcome *pipeline.CycleOutcome) {
	if run.Status == models.RunStatusApproved {
		ui.Success("Run %s: %s after %d iteration(s)", run.ID, output.StatusColor(string(run.Status)), run.Iterations)
	} else {
		ui.Warning("Run %s: %s after %d iteration(s)", run.ID, output.StatusColor(string(run.Status)), run.Iterations)
	}

	fmt.Fprintf(ui.Out, "  code:            %s\n", run.CodePath)
	fmt.Fprintf(ui.Out, "  code review:     %s\n", run.CodeReviewPath)
	fmt.Fprintf(ui.Out, "  security review: %s\n", run.SecurityReviewPath)

	if outcome != nil {
		for _, role := range []string{agents.RoleLeadEngineer, agents.RoleSecurityEngineer} {
			if v, ok := outcome.Verdicts[role]; ok {
				fmt.Fprintf(ui.Out, "  %s: %s\n", role, output.StatusColor(string(v)))
			}
		}
	}
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/devteam/internal/models"
	"github.com/joescharf/devteam/internal/pipeline"
)

var (
	implementTask  string
	implementOwner string
	implementRepo  string
)

var implementCmd = &cobra.Command{
	Use:   "implement <product-name>",
	Short: "Run the implementation cycle from an existing architecture",
	Long: `Run the implementation cycle only. The software engineer implements
the architecture already committed to the target repository, then the
lead engineer and security engineer review each iteration until both
approve or the iteration cap is reached.

Exit codes: 0 approved, 2 completed without approval, 1 error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return implementRun(cmd, args[0])
	},
}

func init() {
	implementCmd.Flags().StringVarP(&implementTask, "task", "t", "", "Task description for the engineer")
	implementCmd.Flags().StringVar(&implementOwner, "owner", "", "Target GitHub repository owner")
	implementCmd.Flags().StringVar(&implementRepo, "repo", "", "Target GitHub repository name")
	rootCmd.AddCommand(implementCmd)
}

func implementRun(cmd *cobra.Command, productName string) error {
	ctx := cmd.Context()

	owner, repo, err := repoTarget(implementOwner, implementRepo, productName)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would run implementation for %q against %s/%s", productName, owner, repo)
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

	paths := pipeline.PathsFor(productName)
	arch, err := stack.ws.GetFile(ctx, paths.Architecture)
	if err != nil {
		return fmt.Errorf("no architecture found at %s (run 'devteam architect' first): %w", paths.Architecture, err)
	}

	run := &models.PipelineRun{
		ProductName:     productName,
		TaskDescription: implementTask,
		RepoOwner:       owner,
		RepoName:        repo,
	}
	if err := s.CreateRun(ctx, run); err != nil {
		return err
	}

	impl := pipeline.NewImplementation(stack.llm, stack.toolset, stack.ws, loopConfig())
	impl.OnReview = func(iteration int, reviewer string, verdict models.Verdict, locator, summary string) {
		_ = s.CreateReview(ctx, &models.ReviewRecord{
			RunID:      run.ID,
			Iteration:  iteration,
			Reviewer:   reviewer,
			Verdict:    verdict,
			ReportPath: locator,
			Summary:    summary,
		})
	}

	outcome, err := impl.Run(ctx, pipeline.ImplementationInput{
		ProductName:       productName,
		TaskDescription:   implementTask,
		TechnicalDocument: arch,
	})
	if err != nil {
		now := time.Now().UTC()
		run.Status = models.RunStatusFailed
		run.CompletedAt = &now
		_ = s.UpdateRun(ctx, run)
		return err
	}

	now := time.Now().UTC()
	run.CompletedAt = &now
	run.Status = outcome.Status
	run.Iterations = outcome.Iterations
	run.CodePath = outcome.Paths.Code
	run.CodeReviewPath = outcome.Paths.CodeReview
	run.SecurityReviewPath = outcome.Paths.SecurityReview
	_ = s.UpdateRun(ctx, run)

	printOutcome(run, outcome)

	if run.Status != models.RunStatusApproved {
		return fmt.Errorf("%s after %d iteration(s): %w",
			run.Status, run.Iterations, errNotApproved)
	}
	return nil
}

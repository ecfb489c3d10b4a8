package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joescharf/devteam/internal/output"
	"github.com/joescharf/devteam/internal/pipeline"
)

var reviewArchFile string

var reviewCmd = &cobra.Command{
	Use:   "review <code-file>",
	Short: "Run a standalone code review on a local file",
	Long: `Run the lead engineer's review workflow on a local code file:
structure review, change identification, and a structured decision.
When the implementation intentionally diverged from the architecture,
proposed documentation updates are printed as well.

Exit codes: 0 approved, 2 changes requested, 1 error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewRun(cmd, args[0])
	},
}

func init() {
	reviewCmd.Flags().StringVar(&reviewArchFile, "architecture", "", "Architecture document to review against")
	rootCmd.AddCommand(reviewCmd)
}

func reviewRun(cmd *cobra.Command, codeFile string) error {
	llmClient, err := requireLLMClient()
	if err != nil {
		return err
	}

	code, err := os.ReadFile(codeFile)
	if err != nil {
		return fmt.Errorf("read code file: %w", err)
	}

	archDoc := ""
	if reviewArchFile != "" {
		data, err := os.ReadFile(reviewArchFile)
		if err != nil {
			return fmt.Errorf("read architecture file: %w", err)
		}
		archDoc = string(data)
	}

	cr := pipeline.NewCodeReview(llmClient)
	res, err := cr.Run(cmd.Context(), string(code), archDoc)
	if err != nil {
		return err
	}

	verdict := res.Decision.Verdict()
	fmt.Fprintf(ui.Out, "Verdict: %s\n", output.StatusColor(string(verdict)))
	if res.Decision.Notes != "" {
		fmt.Fprintf(ui.Out, "Notes: %s\n", res.Decision.Notes)
	}
	for _, item := range res.Decision.ActionItems {
		fmt.Fprintf(ui.Out, "  - %s\n", item)
	}

	if verbose {
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, res.Report)
	}

	if res.ArchitectureUpdates != "" {
		fmt.Fprintln(ui.Out)
		ui.Info("Proposed architecture document updates:")
		fmt.Fprintln(ui.Out, res.ArchitectureUpdates)
	}

	if verdict != "approved" {
		return fmt.Errorf("review requested changes: %w", errNotApproved)
	}
	return nil
}

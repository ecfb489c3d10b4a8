package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/devteam/internal/models"
	"github.com/joescharf/devteam/internal/output"
	"github.com/joescharf/devteam/internal/store"
)

var (
	runsStatus string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runsListRun(cmd)
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its reviews and documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runsShowRun(cmd, args[0])
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "Filter by status: running, approved, completed_with_notes, failed")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 0, "Limit number of runs shown")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runsListRun(cmd *cobra.Command) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	runs, err := s.ListRuns(cmd.Context(), store.RunListFilter{
		Status: models.RunStatus(runsStatus),
		Limit:  runsLimit,
	})
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		ui.Info("No runs found")
		return nil
	}

	table := ui.Table([]string{"ID", "Product", "Scope", "Status", "Iter", "Started"})
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			r.ProductName,
			string(r.Scope),
			output.StatusColor(string(r.Status)),
			fmt.Sprintf("%d", r.Iterations),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return table.Render()
}

func runsShowRun(cmd *cobra.Command, id string) error {
	ctx := cmd.Context()
	s, err := getStore()
	if err != nil {
		return err
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "Run %s\n", run.ID)
	fmt.Fprintf(ui.Out, "  product:    %s (%s)\n", run.ProductName, run.Scope)
	fmt.Fprintf(ui.Out, "  repository: %s/%s\n", run.RepoOwner, run.RepoName)
	fmt.Fprintf(ui.Out, "  status:     %s\n", output.StatusColor(string(run.Status)))
	fmt.Fprintf(ui.Out, "  iterations: %d\n", run.Iterations)
	fmt.Fprintf(ui.Out, "  started:    %s\n", run.StartedAt.Local().Format(time.RFC822))
	if run.CompletedAt != nil {
		fmt.Fprintf(ui.Out, "  completed:  %s\n", run.CompletedAt.Local().Format(time.RFC822))
	}
	if run.CodePath != "" {
		fmt.Fprintf(ui.Out, "  code:       %s\n", run.CodePath)
	}

	docs, err := s.ListDocuments(ctx, id)
	if err != nil {
		return err
	}
	if len(docs) > 0 {
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "Documents:")
		for _, d := range docs {
			fmt.Fprintf(ui.Out, "  %-12s %s\n", d.Kind, d.Path)
		}
	}

	reviews, err := s.ListReviews(ctx, id)
	if err != nil {
		return err
	}
	if len(reviews) > 0 {
		fmt.Fprintln(ui.Out)
		table := ui.Table([]string{"Iter", "Reviewer", "Verdict", "Report"})
		for _, r := range reviews {
			table.Append([]string{
				fmt.Sprintf("%d", r.Iteration),
				r.Reviewer,
				output.StatusColor(string(r.Verdict)),
				r.ReportPath,
			})
		}
		return table.Render()
	}
	return nil
}

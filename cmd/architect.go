package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/devteam/internal/pipeline"
)

var (
	architectOwner string
	architectRepo  string
)

var architectCmd = &cobra.Command{
	Use:   "architect <product-name>",
	Short: "Run the architecture stage from an existing PRD",
	Long: `Run architecture only. The lead engineer reads the PRD already
committed to the target repository and produces the technical
architecture document with implementation tickets.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return architectRun(cmd, args[0])
	},
}

func init() {
	architectCmd.Flags().StringVar(&architectOwner, "owner", "", "Target GitHub repository owner")
	architectCmd.Flags().StringVar(&architectRepo, "repo", "", "Target GitHub repository name")
	rootCmd.AddCommand(architectCmd)
}

func architectRun(cmd *cobra.Command, productName string) error {
	ctx := cmd.Context()

	owner, repo, err := repoTarget(architectOwner, architectRepo, productName)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would run architecture for %q against %s/%s", productName, owner, repo)
		return nil
	}

	stack, err := newAgentStack(ctx, owner, repo)
	if err != nil {
		return err
	}
	defer stack.Close()

	paths := pipeline.PathsFor(productName)
	prd, err := stack.ws.GetFile(ctx, paths.PRD)
	if err != nil {
		return fmt.Errorf("no PRD found at %s (run 'devteam discover' first): %w", paths.PRD, err)
	}

	a := pipeline.NewArchitecture(stack.llm, stack.ws)
	res, err := a.Run(ctx, pipeline.ArchitectureInput{
		ProductName: productName,
		PRDContent:  prd,
		PRDPath:     paths.PRD,
	})
	if err != nil {
		return err
	}

	ui.Success("Architecture committed to %s", res.Path)
	if verbose {
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, res.Document)
	}
	return nil
}

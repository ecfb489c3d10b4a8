package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/devteam/internal/models"
	"github.com/joescharf/devteam/internal/pipeline"
)

var (
	discoverContext            string
	discoverAudience           string
	discoverScope              string
	discoverOwner              string
	discoverRepo               string
	discoverResearch           bool
	discoverCompetitorAnalysis bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover <product-name>",
	Short: "Run the discovery stage: requirements analysis, research, PRD",
	Long: `Run discovery only. The requirements analyst examines the product
context, the researcher optionally investigates the market, and the
product lead synthesizes both into a PRD committed to the target
repository.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return discoverRun(cmd, args[0])
	},
}

func init() {
	discoverCmd.Flags().StringVarP(&discoverContext, "context", "c", "", "What to build and why")
	discoverCmd.Flags().StringVarP(&discoverAudience, "audience", "a", "", "Target audience")
	discoverCmd.Flags().StringVar(&discoverScope, "scope", "feature", "Run scope: product or feature")
	discoverCmd.Flags().StringVar(&discoverOwner, "owner", "", "Target GitHub repository owner")
	discoverCmd.Flags().StringVar(&discoverRepo, "repo", "", "Target GitHub repository name")
	discoverCmd.Flags().BoolVar(&discoverResearch, "research", false, "Run market research")
	discoverCmd.Flags().BoolVar(&discoverCompetitorAnalysis, "competitor-analysis", false, "Include competitor analysis")
	rootCmd.AddCommand(discoverCmd)
}

func discoverRun(cmd *cobra.Command, productName string) error {
	ctx := cmd.Context()

	owner, repo, err := repoTarget(discoverOwner, discoverRepo, productName)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would run discovery for %q against %s/%s", productName, owner, repo)
		return nil
	}

	stack, err := newAgentStack(ctx, owner, repo)
	if err != nil {
		return err
	}
	defer stack.Close()

	d := pipeline.NewDiscovery(stack.llm, stack.ws)
	res, err := d.Run(ctx, pipeline.DiscoveryInput{
		ProductName:              productName,
		ProductContext:           discoverContext,
		TargetAudience:           discoverAudience,
		Scope:                    models.Scope(discoverScope),
		EnableResearch:           discoverResearch,
		EnableCompetitorAnalysis: discoverCompetitorAnalysis,
	})
	if err != nil {
		return err
	}

	ui.Success("PRD committed to %s", res.PRDPath)
	if verbose {
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, res.PRD)
	}
	return nil
}

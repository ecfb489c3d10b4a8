package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/devteam/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets MCP clients query pipeline runs and verdicts natively.
Configure with:

  {
    "mcpServers": {
      "devteam": { "command": "devteam", "args": ["mcp"] }
    }
  }

Available tools: devteam_list_runs, devteam_run_status,
devteam_classify_review, devteam_start_run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore()
		if err != nil {
			return err
		}

		// Same launcher rule as serve: with credentials devteam_start_run
		// works, without them the server is read-only.
		server := mcp.NewServer(s, maybeLauncher(s))
		return server.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

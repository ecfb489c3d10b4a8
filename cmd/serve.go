package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/devteam/internal/api"
	"github.com/joescharf/devteam/internal/pipeline"
	"github.com/joescharf/devteam/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing the runs API.

GET  /api/v1/runs                 list runs
POST /api/v1/runs                 launch a pipeline run
GET  /api/v1/runs/{id}            run details
GET  /api/v1/runs/{id}/reviews    reviewer verdicts
GET  /api/v1/runs/{id}/documents  stage documents

By default it listens on port 8080. Use --port to change it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveRun(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	viper.SetDefault("port", 8080)
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

// pipelineLauncher builds a fresh agent stack for every run so concurrent
// API-launched runs each get their own workspace and tool connection.
type pipelineLauncher struct {
	store store.Store
}

func (l *pipelineLauncher) Run(ctx context.Context, in pipeline.PipelineInput) (*pipeline.PipelineResult, error) {
	owner, repo, err := repoTarget(in.RepoOwner, in.RepoName, in.ProductName)
	if err != nil {
		return nil, err
	}
	in.RepoOwner = owner
	in.RepoName = repo

	stack, err := newAgentStack(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	defer stack.Close()

	p := pipeline.NewPipeline(
		pipeline.NewDiscovery(stack.llm, stack.ws),
		pipeline.NewArchitecture(stack.llm, stack.ws),
		pipeline.NewImplementation(stack.llm, stack.toolset, stack.ws, loopConfig()),
		l.store, nil,
	)
	return p.Run(ctx, in)
}

// maybeLauncher returns a pipeline launcher when both credentials are
// configured, nil otherwise. Callers treat nil as read-only mode.
func maybeLauncher(s store.Store) api.Launcher {
	if newLLMClient() == nil || githubToken() == "" {
		return nil
	}
	return &pipelineLauncher{store: s}
}

func serveRun(cmd *cobra.Command) error {
	port := viper.GetInt("port")

	s, err := getStore()
	if err != nil {
		return err
	}

	// The launcher is optional: without credentials the API serves
	// read-only and POST /runs returns 503.
	launcher := maybeLauncher(s)
	if launcher == nil {
		ui.Warning("No API key or GitHub token configured: serving read-only")
	}

	server := api.NewServer(s, launcher, nil)
	addr := fmt.Sprintf(":%d", port)
	ui.Info("Serving API at http://localhost%s", addr)
	return http.ListenAndServe(addr, server.Router())
}

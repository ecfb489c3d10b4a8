package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/joescharf/devteam/internal/llm"
	"github.com/joescharf/devteam/internal/pipeline"
	"github.com/joescharf/devteam/internal/tools"
	"github.com/joescharf/devteam/internal/workspace"
)

// newLLMClient creates an LLM client from config/env, or returns nil if no API key is configured.
func newLLMClient() *llm.Client {
	apiKey := viper.GetString("anthropic.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil
	}
	return llm.NewClient(apiKey, viper.GetString("anthropic.model"))
}

// requireLLMClient is newLLMClient with an error instead of nil.
func requireLLMClient() (*llm.Client, error) {
	c := newLLMClient()
	if c == nil {
		return nil, fmt.Errorf("no API key configured: set anthropic.api_key or ANTHROPIC_API_KEY")
	}
	return c, nil
}

// githubToken resolves the GitHub token from config/env.
func githubToken() string {
	token := viper.GetString("github.token")
	if token == "" {
		token = os.Getenv("GITHUB_PERSONAL_ACCESS_TOKEN")
	}
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	return token
}

// repoTarget resolves the target repository from flags/config.
func repoTarget(owner, repo, productName string) (string, string, error) {
	if owner == "" {
		owner = viper.GetString("github.owner")
	}
	if owner == "" {
		return "", "", fmt.Errorf("no repository owner: pass --owner or set github.owner")
	}
	if repo == "" {
		repo = workspace.RepoNameFor(productName)
	}
	return owner, repo, nil
}

// agentStack bundles everything a pipeline stage needs to talk to the
// model and the target repository.
type agentStack struct {
	llm     *llm.Client
	toolset *tools.MCPToolset
	ws      *workspace.Client
}

// newAgentStack connects the LLM client and the GitHub MCP toolset for a
// target repository. Callers must Close the stack when done.
func newAgentStack(ctx context.Context, owner, repo string) (*agentStack, error) {
	llmClient, err := requireLLMClient()
	if err != nil {
		return nil, err
	}

	token := githubToken()
	if token == "" {
		return nil, fmt.Errorf("no GitHub token: set github.token or GITHUB_PERSONAL_ACCESS_TOKEN")
	}

	toolset, err := tools.NewGitHubToolset(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("connect github tools: %w", err)
	}

	return &agentStack{
		llm:     llmClient,
		toolset: toolset,
		ws:      workspace.New(toolset, owner, repo),
	}, nil
}

func (a *agentStack) Close() {
	if a.toolset != nil {
		_ = a.toolset.Close()
	}
}

// loopConfig reads the iteration cap and error policy from viper.
func loopConfig() pipeline.Config {
	return pipeline.DefaultConfig()
}

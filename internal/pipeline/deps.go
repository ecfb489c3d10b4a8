package pipeline

import (
	"context"

	"github.com/joescharf/devteam/internal/llm"
)

// Completer is the subset of the LLM client the document stages use.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	CompleteJSON(ctx context.Context, system, user string, out any) error
}

// AgentRunner additionally drives tool-use conversations for steps that
// mutate the target repository.
type AgentRunner interface {
	Completer
	RunWithTools(ctx context.Context, system, user string, toolset llm.Toolset) (string, error)
}

// Workspace is the artifact store in the target repository.
type Workspace interface {
	EnsureRepo(ctx context.Context, description string) error
	PutFile(ctx context.Context, path, content, message string) (string, error)
	GetFile(ctx context.Context, path string) (string, error)
	Owner() string
	Repo() string
	Slug() string
}

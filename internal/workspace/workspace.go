package workspace

import (
	"context"
	"fmt"
	"strings"
)

// Toolset is the subset of the MCP toolset the workspace needs.
type Toolset interface {
	Call(ctx context.Context, name string, args map[string]any) (string, error)
}

// Client reads and writes pipeline artifacts in the target GitHub
// repository through MCP tools.
type Client struct {
	tools Toolset
	owner string
	repo  string
}

// New creates a workspace client for owner/repo.
func New(tools Toolset, owner, repo string) *Client {
	return &Client{tools: tools, owner: owner, repo: repo}
}

// RepoNameFor derives a GitHub-safe repository name from a product name.
func RepoNameFor(productName string) string {
	name := strings.ToLower(strings.TrimSpace(productName))
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "/", "-")
	return name
}

// Owner returns the repository owner.
func (c *Client) Owner() string { return c.owner }

// Repo returns the repository name.
func (c *Client) Repo() string { return c.repo }

// Slug returns "owner/repo".
func (c *Client) Slug() string { return c.owner + "/" + c.repo }

// EnsureRepo makes sure the target repository exists, creating it only when
// the lookup fails. An "already exists" error from a racing create counts
// as success, so calling this on every iteration is safe.
func (c *Client) EnsureRepo(ctx context.Context, description string) error {
	if _, err := c.tools.Call(ctx, "get_repository", map[string]any{
		"owner": c.owner,
		"repo":  c.repo,
	}); err == nil {
		return nil
	}

	_, err := c.tools.Call(ctx, "create_repository", map[string]any{
		"name":        c.repo,
		"description": description,
		"private":     false,
		"autoInit":    true,
	})
	if err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("create repository %s: %w", c.Slug(), err)
	}
	return nil
}

// PutFile creates or updates a file on main and returns its path.
func (c *Client) PutFile(ctx context.Context, path, content, message string) (string, error) {
	_, err := c.tools.Call(ctx, "create_or_update_file", map[string]any{
		"owner":   c.owner,
		"repo":    c.repo,
		"path":    path,
		"content": content,
		"message": message,
		"branch":  "main",
	})
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// GetFile returns the contents of a file on main.
func (c *Client) GetFile(ctx context.Context, path string) (string, error) {
	out, err := c.tools.Call(ctx, "get_file_contents", map[string]any{
		"owner": c.owner,
		"repo":  c.repo,
		"path":  path,
	})
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

// isAlreadyExists matches the GitHub "name already exists" validation error
// (HTTP 422) in whatever text form the MCP server relays it.
func isAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "422")
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// ToolDef describes one callable tool exposed to the model.
type ToolDef struct {
	Name        string
	Description string
	InputSchema map[string]any
	Required    []string
}

// Toolset is the boundary to an external tool provider, typically an MCP
// server. Call returns the tool's text output; a tool-reported error comes
// back as a Go error so the loop can surface it to the model.
type Toolset interface {
	Tools(ctx context.Context) ([]ToolDef, error)
	Call(ctx context.Context, name string, args map[string]any) (string, error)
}

// maxToolRounds bounds the number of model/tool round trips per step, so a
// model stuck re-calling tools cannot spin forever.
const maxToolRounds = 20

// RunWithTools drives a tool-use conversation: tool_use blocks from the
// model are dispatched to the toolset and the results fed back until the
// model stops requesting tools. Returns the model's final text reply.
func (c *Client) RunWithTools(ctx context.Context, system, user string, toolset Toolset) (string, error) {
	defs, err := toolset.Tools(ctx)
	if err != nil {
		return "", fmt.Errorf("list tools: %w", err)
	}

	toolParams := make([]anthropic.ToolUnionParam, len(defs))
	for i, d := range defs {
		toolParams[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        d.Name,
				Description: anthropic.String(d.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: d.InputSchema,
					Required:   d.Required,
				},
			},
		}
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
	}

	for round := 0; round < maxToolRounds; round++ {
		msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     c.model,
			MaxTokens: 8192,
			System: []anthropic.TextBlockParam{
				{Text: system},
			},
			Messages: messages,
			Tools:    toolParams,
		})
		if err != nil {
			return "", fmt.Errorf("anthropic API call: %w", err)
		}

		if msg.StopReason != "tool_use" {
			text := firstText(msg)
			if text == "" {
				return "", fmt.Errorf("no text content in API response")
			}
			return text, nil
		}

		messages = append(messages, msg.ToParam())

		var results []anthropic.ContentBlockParamUnion
		for _, block := range msg.Content {
			if block.Type != "tool_use" {
				continue
			}

			var args map[string]any
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &args); err != nil {
					results = append(results, anthropic.NewToolResultBlock(block.ID,
						fmt.Sprintf("invalid tool input: %v", err), true))
					continue
				}
			}

			out, err := toolset.Call(ctx, block.Name, args)
			if err != nil {
				results = append(results, anthropic.NewToolResultBlock(block.ID, err.Error(), true))
				continue
			}
			results = append(results, anthropic.NewToolResultBlock(block.ID, out, false))
		}

		messages = append(messages, anthropic.NewUserMessage(results...))
	}

	return "", fmt.Errorf("tool loop exceeded %d rounds without a final reply", maxToolRounds)
}

// Package openai implements the provider contract on top of the OpenAI chat
// completions API, including any OpenAI-compatible endpoint reachable through
// a base URL override.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/arborworks/arbor/core/protocol"
	"github.com/arborworks/arbor/provider"
	"github.com/arborworks/arbor/tree"
)

// Client is an OpenAI-backed provider. Each Client owns its per-round tool
// scratch state; Fork produces siblings sharing the HTTP client.
type Client struct {
	api     *goopenai.Client
	cfg     Config
	pending []protocol.ToolCall
}

var _ provider.Provider = (*Client)(nil)

// New creates a Client from configuration. The API key is read from the
// environment variable named by cfg.APIKeyEnv.
func New(cfg Config) (*Client, error) {
	defaults := DefaultConfig()
	defaults.Merge(&cfg)
	cfg = defaults

	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("environment variable %s is not set", cfg.APIKeyEnv)
	}

	clientCfg := goopenai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	slog.Debug("initializing openai provider", "model", cfg.Model, "base_url", cfg.BaseURL)

	return &Client{
		api: goopenai.NewClientWithConfig(clientCfg),
		cfg: cfg,
	}, nil
}

// Generate runs one chat completion round over the conversation path. When
// the model requests tool calls, they are recorded as pending scratch state
// and returned in the reply's extras for the caller to satisfy with
// tool-role turns.
func (c *Client) Generate(ctx context.Context, path []protocol.Message) (provider.Reply, error) {
	req := goopenai.ChatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: toChatMessages(path),
	}
	if c.cfg.Temperature != 0 {
		req.Temperature = c.cfg.Temperature
	}
	if c.cfg.MaxTokens > 0 {
		req.MaxCompletionTokens = c.cfg.MaxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("openai chat completion failed", "model", c.cfg.Model, "error", err)
		return provider.Reply{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return provider.Reply{}, fmt.Errorf("openai returned no choices")
	}

	choice := resp.Choices[0]
	slog.Debug("openai round complete", "finish_reason", choice.FinishReason)

	reply := provider.Reply{
		Text: choice.Message.Content,
		Role: protocol.RoleAssistant,
		Extras: map[string]any{
			"finish_reason": string(choice.FinishReason),
		},
	}

	if calls := fromChatToolCalls(choice.Message.ToolCalls); len(calls) > 0 {
		c.pending = calls
		reply.Extras[tree.ExtrasToolCalls] = calls
	} else {
		c.pending = nil
	}

	return reply, nil
}

// HasPendingToolCalls reports whether the last round requested tools that
// have not been cleared.
func (c *Client) HasPendingToolCalls() bool {
	return len(c.pending) > 0
}

// ClearPendingToolState drops tool scratch state from the last round.
func (c *Client) ClearPendingToolState() {
	c.pending = nil
}

// Fork returns a provider sharing the underlying API client with fresh
// scratch state.
func (c *Client) Fork() provider.Provider {
	return &Client{api: c.api, cfg: c.cfg}
}

func toChatMessages(path []protocol.Message) []goopenai.ChatCompletionMessage {
	msgs := make([]goopenai.ChatCompletionMessage, 0, len(path))
	for _, m := range path {
		cm := goopenai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			cm.ToolCalls = append(cm.ToolCalls, goopenai.ToolCall{
				ID:   tc.ID,
				Type: goopenai.ToolTypeFunction,
				Function: goopenai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		msgs = append(msgs, cm)
	}
	return msgs
}

func fromChatToolCalls(calls []goopenai.ToolCall) []protocol.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]protocol.ToolCall, 0, len(calls))
	for _, tc := range calls {
		out = append(out, protocol.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}

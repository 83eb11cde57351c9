// Package ollama implements llm.Generator against a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/emberworks/aria/llm"
)

// Client implements the llm.Generator interface for Ollama's API.
type Client struct {
	client *api.Client
	model  string
}

// NewClient creates a Client against the given host and model. If host is
// empty the environment default is used (OLLAMA_HOST or
// http://localhost:11434).
func NewClient(host, model string) (*Client, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	var client *api.Client
	if host != "" {
		baseURL, err := parseHost(host)
		if err != nil {
			return nil, fmt.Errorf("invalid host: %w", err)
		}
		client = api.NewClient(baseURL, &http.Client{})
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
	}

	return &Client{client: client, model: model}, nil
}

// parseHost parses a host string into a URL.
func parseHost(host string) (*url.URL, error) {
	// If host doesn't have a scheme, add http://
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return url.Parse(host)
}

// Generate implements llm.Generator.Generate.
func (c *Client) Generate(ctx context.Context, system, user string, opts llm.Options) (string, error) {
	messages := []api.Message{}
	if system != "" {
		messages = append(messages, api.Message{Role: "system", Content: system})
	}
	messages = append(messages, api.Message{Role: "user", Content: user})

	chatReq := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   new(bool), // non-streaming
		Options:  make(map[string]interface{}),
	}
	if opts.Temperature > 0 {
		chatReq.Options["temperature"] = opts.Temperature
	}
	if opts.TopP > 0 {
		chatReq.Options["top_p"] = opts.TopP
	}
	if opts.ContextWindow > 0 {
		chatReq.Options["num_ctx"] = opts.ContextWindow
	}
	if opts.MaxTokens > 0 {
		chatReq.Options["num_predict"] = opts.MaxTokens
	}

	var chatResp api.ChatResponse
	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		chatResp = resp
		return nil
	})
	if err != nil {
		return "", convertError(err)
	}

	text := strings.TrimSpace(chatResp.Message.Content)
	if text == "" {
		return "", llm.NewProviderError("ollama returned an empty completion", nil)
	}
	return text, nil
}

// Ping implements llm.Generator.Ping.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Heartbeat(ctx); err != nil {
		return convertError(err)
	}
	return nil
}

// convertError maps Ollama client errors to llm.Error types. The Ollama API
// client surfaces plain errors, so classification is by sentinel only.
func convertError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return llm.NewTimeoutError("ollama request timed out", err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return llm.NewNetworkError("ollama request failed", err)
	}
}

var _ llm.Generator = (*Client)(nil)

// Package anthropic implements llm.Generator against the Anthropic API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/emberworks/aria/llm"
)

// defaultMaxTokens bounds completions when the caller sets no limit; the
// Anthropic API requires max_tokens on every request.
const defaultMaxTokens = 1024

// Client implements the llm.Generator interface for Anthropic's API.
type Client struct {
	client *anthropic.Client
	model  string
}

// NewClient creates a Client with the given API key and model.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{client: &client, model: model}, nil
}

// Generate implements llm.Generator.Generate.
func (c *Client) Generate(ctx context.Context, system, user string, opts llm.Options) (string, error) {
	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}
	if opts.TopP > 0 {
		params.TopP = anthropic.Float(opts.TopP)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", convertError(err)
	}

	var sb strings.Builder
	for _, blockUnion := range message.Content {
		if block, ok := blockUnion.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", llm.NewProviderError("anthropic returned an empty completion", nil)
	}
	return text, nil
}

// Ping implements llm.Generator.Ping.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx, anthropic.ModelListParams{}); err != nil {
		return convertError(err)
	}
	return nil
}

// convertError converts Anthropic API errors to llm.Error types.
func convertError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return llm.NewTimeoutError("anthropic request timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return llm.NewNetworkError("anthropic request failed", err)
	}

	switch apiErr.StatusCode {
	case http.StatusTooManyRequests:
		return llm.NewRateLimitError("Anthropic rate limit", nil, err)
	case http.StatusBadRequest:
		return &llm.Error{
			Type:        llm.ErrorTypeInvalidRequest,
			Message:     "Anthropic invalid request",
			Retryable:   false,
			StatusCode:  apiErr.StatusCode,
			ProviderErr: err,
		}
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return &llm.Error{
			Type:        llm.ErrorTypeProvider,
			Message:     "Anthropic server error",
			Retryable:   true,
			StatusCode:  apiErr.StatusCode,
			ProviderErr: err,
		}
	default:
		return &llm.Error{
			Type:        llm.ErrorTypeProvider,
			Message:     "Anthropic API error",
			Retryable:   false,
			StatusCode:  apiErr.StatusCode,
			ProviderErr: err,
		}
	}
}

var _ llm.Generator = (*Client)(nil)

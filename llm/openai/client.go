// Package openai implements llm.Generator against the OpenAI chat API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/emberworks/aria/llm"
)

// OpenAI API errors don't directly expose retry-after headers; use a default
// retry-after duration for rate limits.
const defaultRetryAfter = 60 * time.Second

// Client implements the llm.Generator interface for OpenAI's API.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a Client. If baseURL is empty the default OpenAI API
// endpoint is used.
func NewClient(apiKey, baseURL, model, organization string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if organization != "" {
		config.OrgID = organization
	}

	return &Client{client: openai.NewClientWithConfig(config), model: model}, nil
}

// Generate implements llm.Generator.Generate.
func (c *Client) Generate(ctx context.Context, system, user string, opts llm.Options) (string, error) {
	messages := []openai.ChatCompletionMessage{}
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	if opts.Temperature > 0 {
		chatReq.Temperature = float32(opts.Temperature)
	}
	if opts.TopP > 0 {
		chatReq.TopP = float32(opts.TopP)
	}
	if opts.MaxTokens > 0 {
		chatReq.MaxTokens = opts.MaxTokens
	}

	chatResp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", convertError(err)
	}
	if len(chatResp.Choices) == 0 {
		return "", llm.NewProviderError("no choices in response", nil)
	}

	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return "", llm.NewProviderError("openai returned an empty completion", nil)
	}
	return text, nil
}

// Ping implements llm.Generator.Ping.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return convertError(err)
	}
	return nil
}

// convertError converts OpenAI API errors to llm.Error types.
func convertError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return llm.NewTimeoutError("openai request timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return llm.NewNetworkError("openai request failed", err)
	}

	switch apiErr.HTTPStatusCode {
	case http.StatusTooManyRequests:
		retryAfter := defaultRetryAfter
		return llm.NewRateLimitError(
			fmt.Sprintf("OpenAI rate limit: %s", apiErr.Message),
			&retryAfter,
			err,
		)
	case http.StatusBadRequest:
		return &llm.Error{
			Type:        llm.ErrorTypeInvalidRequest,
			Message:     fmt.Sprintf("OpenAI invalid request: %s", apiErr.Message),
			Retryable:   false,
			StatusCode:  apiErr.HTTPStatusCode,
			ProviderErr: err,
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return &llm.Error{
			Type:        llm.ErrorTypeProvider,
			Message:     fmt.Sprintf("OpenAI server error: %s", apiErr.Message),
			Retryable:   true,
			StatusCode:  apiErr.HTTPStatusCode,
			ProviderErr: err,
		}
	default:
		return &llm.Error{
			Type:        llm.ErrorTypeProvider,
			Message:     fmt.Sprintf("OpenAI API error: %s", apiErr.Message),
			Retryable:   false,
			StatusCode:  apiErr.HTTPStatusCode,
			ProviderErr: err,
		}
	}
}

var _ llm.Generator = (*Client)(nil)

package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to the OpenAI chat completion API through the official
// client library. It is the default provider.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI provider. A missing API key is not an
// error here; ChatComplete fails fast instead, so the provider can always be
// registered.
func NewOpenAIClient(apiKey, model string, timeout time.Duration) *OpenAIClient {
	c := &OpenAIClient{model: model}
	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		cfg.HTTPClient = &http.Client{Timeout: timeout}
		c.client = openai.NewClientWithConfig(cfg)
	}
	return c
}

// Code returns the provider code
func (c *OpenAIClient) Code() string {
	return ProviderOpenAI
}

// ChatComplete sends the system and user messages and returns the assistant's
// text content.
func (c *OpenAIClient) ChatComplete(ctx context.Context, systemMessage, userMessage string) (string, error) {
	if c.client == nil {
		return "", &ConfigError{Provider: ProviderOpenAI, Var: "OPENAI_API_KEY"}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: chatTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", ErrEmptyContent)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyContent)
	}
	return content, nil
}

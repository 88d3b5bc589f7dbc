package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Gemini exposes an OpenAI-compatible endpoint.
const (
	GeminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultGeminiModel = "gemini-2.5-flash"
)

var errNoChoices = errors.New("no choices in response")

// OpenAICompleter talks to any OpenAI-compatible chat completions endpoint.
type OpenAICompleter struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAICompleter creates a completer; an empty baseURL uses the OpenAI default.
func NewOpenAICompleter(name, apiKey, baseURL, model string) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		name:   name,
	}
}

// NewGeminiCompleter points an OpenAICompleter at Gemini.
func NewGeminiCompleter(apiKey, model string) *OpenAICompleter {
	if model == "" {
		model = DefaultGeminiModel
	}

	return NewOpenAICompleter("gemini", apiKey, GeminiBaseURL, model)
}

func (c *OpenAICompleter) Name() string { return c.name }

// Complete sends prompt as a single user message.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

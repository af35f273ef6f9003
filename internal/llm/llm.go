package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pavelanni/dumpquiz/internal/llm/prompts"
	"github.com/pavelanni/dumpquiz/internal/qa"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyExplanation is returned when the model answers with no text.
var ErrEmptyExplanation = errors.New("LLM returned an empty explanation")

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api      *openai.Client
	model    string
	variant  prompts.PromptVariant
	language string
}

// New creates a new LLM client. variant selects the explanation prompt.
func New(baseURL, apiKey, modelName, variant string) (*Client, error) {
	if err := prompts.Load(prompts.Templates); err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	if !prompts.IsValidVariant(variant) {
		return nil, fmt.Errorf("invalid prompt variant %q", variant)
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:      openai.NewClientWithConfig(config),
		model:    modelName,
		variant:  prompts.PromptVariant(variant),
		language: "English",
	}, nil
}

// WithLanguage sets the language explanations are written in.
func (c *Client) WithLanguage(lang string) *Client {
	switch strings.ToLower(lang) {
	case "zh", "zh-cn", "zh-hans":
		c.language = "Simplified Chinese"
	case "", "en":
		c.language = "English"
	default:
		c.language = lang
	}
	return c
}

// Ping checks that the endpoint answers a model listing.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// Explain asks the model why the recorded answer of rec is correct.
func (c *Client) Explain(ctx context.Context, rec qa.Record) (string, error) {
	systemPrompt, err := prompts.BuildExplainPrompt(c.variant, rec, c.language)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Explain the correct answer."},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("LLM explanation", "id", rec.ID, "chars", len(text))
	if text == "" {
		return "", ErrEmptyExplanation
	}
	return text, nil
}

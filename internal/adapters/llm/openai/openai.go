package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/seven-pz/translationmdexe/internal/adapters/llm/parse"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

// Client talks to the OpenAI API, or any OpenAI-compatible endpoint when
// baseURL is set.
type Client struct {
	api   *openai.Client
	model string
}

func New(apiKey, baseURL, model string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

func (c *Client) Name() string { return "openai" }

func (c *Client) Translate(ctx context.Context, text string, p ports.TranslateParams) (ports.TranslateResult, error) {
	model := p.Model
	if model == "" {
		model = c.model
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: float32(p.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: p.UserPrompt},
		},
	})
	if err != nil {
		return ports.TranslateResult{}, fmt.Errorf("openai translate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ports.TranslateResult{}, fmt.Errorf("no choices returned")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	tr, err := parse.ExtractTranslation(content)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	return ports.TranslateResult{Translation: tr, Raw: content}, nil
}

func (c *Client) ListModels(ctx context.Context) ([]ports.ModelInfo, error) {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai list models: %w", err)
	}
	out := make([]ports.ModelInfo, 0, len(list.Models))
	for _, m := range list.Models {
		out = append(out, ports.ModelInfo{Name: m.ID})
	}
	return out, nil
}

func (c *Client) Test(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

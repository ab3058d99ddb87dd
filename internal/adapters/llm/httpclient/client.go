package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/seven-pz/translationmdexe/internal/adapters/llm/parse"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

const (
	defaultOllamaBase     = "http://localhost:11434"
	defaultOpenRouterBase = "https://openrouter.ai"
)

// Client is an HTTP-backed provider for Ollama and OpenRouter runtimes.
// A circuit breaker makes a wedged local runtime fail fast instead of
// stalling every segment of a document job.
type Client struct {
	providerType string
	apiKey       string
	baseURL      string
	model        string
	http         *resty.Client
	breaker      *gobreaker.CircuitBreaker
}

func New(providerType, apiKey, baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := resty.New().SetTimeout(timeout)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "llm-" + strings.ToLower(providerType),
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		providerType: strings.ToLower(providerType),
		apiKey:       apiKey,
		baseURL:      baseURL,
		model:        model,
		http:         c,
		breaker:      cb,
	}
}

func (c *Client) Name() string { return c.providerType }

func (c *Client) Translate(ctx context.Context, text string, p ports.TranslateParams) (ports.TranslateResult, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		switch c.providerType {
		case "openrouter":
			return c.translateOpenRouter(ctx, p)
		case "ollama":
			return c.translateOllama(ctx, p)
		default:
			return ports.TranslateResult{}, fmt.Errorf("unsupported provider: %s", c.providerType)
		}
	})
	if err != nil {
		return ports.TranslateResult{}, err
	}
	return out.(ports.TranslateResult), nil
}

func (c *Client) ListModels(ctx context.Context) ([]ports.ModelInfo, error) {
	switch c.providerType {
	case "ollama":
		base := c.baseURL
		if base == "" {
			base = defaultOllamaBase
		}
		url := strings.TrimRight(base, "/") + "/api/tags"
		var resp struct {
			Models []struct {
				Name string `json:"name"`
			} `json:"models"`
		}
		r, err := c.http.R().SetContext(ctx).SetResult(&resp).Get(url)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("ollama list models: %s; body: %s", r.Status(), r.String())
		}
		out := make([]ports.ModelInfo, 0, len(resp.Models))
		for _, m := range resp.Models {
			out = append(out, ports.ModelInfo{Name: m.Name})
		}
		return out, nil
	case "openrouter":
		base := c.baseURL
		if base == "" {
			base = defaultOpenRouterBase
		}
		url := openRouterURL(base, "/models")
		var resp struct {
			Data []struct {
				ID            string `json:"id"`
				Name          string `json:"name"`
				ContextLength int    `json:"context_length"`
			} `json:"data"`
		}
		r, err := c.http.R().SetContext(ctx).
			SetHeader("Authorization", "Bearer "+c.apiKey).
			SetResult(&resp).Get(url)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("openrouter list models: %s; body: %s", r.Status(), r.String())
		}
		out := make([]ports.ModelInfo, 0, len(resp.Data))
		for _, d := range resp.Data {
			label := d.Name
			if label == "" {
				label = d.ID
			}
			out = append(out, ports.ModelInfo{Name: d.ID, Description: label, ContextTokens: d.ContextLength})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", c.providerType)
	}
}

func (c *Client) Test(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

func (c *Client) translateOllama(ctx context.Context, p ports.TranslateParams) (ports.TranslateResult, error) {
	base := c.baseURL
	if base == "" {
		base = defaultOllamaBase
	}
	url := strings.TrimRight(base, "/") + "/api/chat"
	model := p.Model
	if model == "" {
		model = c.model
	}
	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": p.SystemPrompt},
			{"role": "user", "content": p.UserPrompt},
		},
		"stream":  false,
		"format":  "json",
		"options": map[string]any{"temperature": p.Temperature},
	}
	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	r, err := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).SetResult(&resp).Post(url)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	if r.IsError() {
		return ports.TranslateResult{}, fmt.Errorf("ollama translate: %s; body: %s", r.Status(), r.String())
	}
	content := strings.TrimSpace(resp.Message.Content)
	tr, err := parse.ExtractTranslation(content)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	return ports.TranslateResult{Translation: tr, Raw: content}, nil
}

func (c *Client) translateOpenRouter(ctx context.Context, p ports.TranslateParams) (ports.TranslateResult, error) {
	base := c.baseURL
	if base == "" {
		base = defaultOpenRouterBase
	}
	url := openRouterURL(base, "/chat/completions")
	model := p.Model
	if model == "" {
		model = c.model
	}
	schema := map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   "translation",
			"strict": true,
			"schema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"translation": map[string]any{"type": "string"},
				},
				"required":             []string{"translation"},
				"additionalProperties": false,
			},
		},
	}
	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": p.SystemPrompt},
			{"role": "user", "content": p.UserPrompt},
		},
		"temperature":     p.Temperature,
		"response_format": schema,
	}
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	rr, err := c.postOpenRouter(ctx, url, body, &resp)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	if rr.IsError() {
		// Some models reject json_schema; retry with the weaker json_object mode.
		if rr.StatusCode() == 400 {
			body["response_format"] = map[string]string{"type": "json_object"}
			rr2, err2 := c.postOpenRouter(ctx, url, body, &resp)
			if err2 != nil {
				return ports.TranslateResult{}, err2
			}
			if rr2.IsError() {
				return ports.TranslateResult{}, fmt.Errorf("openrouter translate: %s; body: %s", rr2.Status(), rr2.String())
			}
		} else {
			return ports.TranslateResult{}, fmt.Errorf("openrouter translate: %s; body: %s", rr.Status(), rr.String())
		}
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

func (c *Client) postOpenRouter(ctx context.Context, url string, body any, result any) (*resty.Response, error) {
	return c.http.R().SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).SetResult(result).Post(url)
}

// openRouterURL builds a URL for OpenRouter whether base contains /api/v1 or not.
func openRouterURL(base, tail string) string {
	b := strings.TrimRight(base, "/")
	if strings.Contains(b, "/api/v1") {
		idx := strings.Index(b, "/api/v1")
		b = b[:idx+len("/api/v1")]
		return b + tail
	}
	return b + "/api/v1" + tail
}

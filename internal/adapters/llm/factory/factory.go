package factory

import (
	"fmt"
	"strings"
	"time"

	"github.com/seven-pz/translationmdexe/internal/adapters/llm/httpclient"
	"github.com/seven-pz/translationmdexe/internal/adapters/llm/openai"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

type Options struct {
	Type    string
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// New builds a provider from configuration.
func New(opts Options) (ports.Provider, error) {
	switch strings.ToLower(opts.Type) {
	case "ollama", "openrouter":
		return httpclient.New(opts.Type, opts.APIKey, opts.BaseURL, opts.Model, opts.Timeout), nil
	case "openai":
		return openai.New(opts.APIKey, opts.BaseURL, opts.Model, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %q", opts.Type)
	}
}

package llm

import (
	"context"

	"github.com/askdb/askdb/internal/config"
)

// Request describes one completion call: a system/user message pair plus
// sampling and length bounds. ResponseJSON asks the provider to constrain
// the completion to a single JSON object where supported.
type Request struct {
	System       string
	User         string
	Temperature  float64
	MaxTokens    int
	ResponseJSON bool
}

// Service defines the interface for text-completion operations. The pipeline
// never trusts the returned text; callers are responsible for extracting and
// validating whatever they asked for.
type Service interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Provider constants for supported completion backends
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Config carries provider selection and credentials for the client.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  string
}

// FromAppConfig builds a client Config from the application configuration.
func FromAppConfig(cfg config.LLMConfig) Config {
	return Config{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.Timeout,
	}
}

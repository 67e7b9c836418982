// Package llms provides language model providers for answer generation.
package llms

import (
	"context"
	"fmt"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/registry"
)

// ============================================================================
// LLM PROVIDER INTERFACE AND REGISTRY
// ============================================================================

// LLMProvider is the interface for language model generation
type LLMProvider interface {
	// Generate produces the full response for a pre-built prompt
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStreaming produces response tokens in model order; the
	// channel is closed when the stream completes or fails
	GenerateStreaming(ctx context.Context, prompt string) (<-chan string, error)

	// ModelName returns the model name
	ModelName() string

	// Close releases provider resources
	Close() error
}

// NewProviderFromConfig creates an LLM provider for the configured type
func NewProviderFromConfig(cfg *config.LLMConfig) (LLMProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("llm config cannot be nil")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid llm config: %w", err)
	}

	switch cfg.Provider {
	case "ollama":
		return NewOllamaProvider(cfg)
	case "openai":
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

// LLMRegistry manages LLM provider instances
type LLMRegistry struct {
	*registry.BaseRegistry[LLMProvider]
}

// NewLLMRegistry creates a new LLM registry
func NewLLMRegistry() *LLMRegistry {
	return &LLMRegistry{
		BaseRegistry: registry.NewBaseRegistry[LLMProvider](),
	}
}

// CreateLLMFromConfig creates a provider from configuration and registers it
func (r *LLMRegistry) CreateLLMFromConfig(name string, cfg *config.LLMConfig) (LLMProvider, error) {
	if name == "" {
		return nil, fmt.Errorf("llm name cannot be empty")
	}

	provider, err := NewProviderFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	if err := r.Register(name, provider); err != nil {
		return nil, fmt.Errorf("failed to register llm: %w", err)
	}

	return provider, nil
}

package embedders

import (
	"context"
	"fmt"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/registry"
)

// ============================================================================
// EMBEDDER PROVIDER INTERFACE AND REGISTRY
// ============================================================================

// EmbedderProvider is the interface all embedding providers implement.
// Embed returns the raw model vector; any reconciliation against the
// collection dimension is the caller's responsibility.
type EmbedderProvider interface {
	// Embed converts text into a vector
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the configured vector dimension
	Dimension() int

	// ModelName returns the embedding model identifier
	ModelName() string

	// Close releases provider resources
	Close() error
}

// NewProviderFromConfig builds the embedder named by the config
func NewProviderFromConfig(cfg *config.EmbedderConfig) (EmbedderProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("embedder config cannot be nil")
	}

	switch cfg.Provider {
	case "ollama":
		return NewOllamaEmbedder(cfg)
	case "openai":
		return NewOpenAIEmbedder(cfg)
	case "hash":
		return NewHashEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedder provider: %s", cfg.Provider)
	}
}

// EmbedderRegistry manages named embedder providers
type EmbedderRegistry struct {
	*registry.BaseRegistry[EmbedderProvider]
}

// NewEmbedderRegistry creates a new embedder registry
func NewEmbedderRegistry() *EmbedderRegistry {
	return &EmbedderRegistry{
		BaseRegistry: registry.NewBaseRegistry[EmbedderProvider](),
	}
}

// CreateEmbedderFromConfig builds an embedder and registers it under name
func (r *EmbedderRegistry) CreateEmbedderFromConfig(name string, cfg *config.EmbedderConfig) (EmbedderProvider, error) {
	if name == "" {
		return nil, fmt.Errorf("embedder name cannot be empty")
	}

	provider, err := NewProviderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder provider: %w", err)
	}

	if err := r.Register(name, provider); err != nil {
		return nil, fmt.Errorf("failed to register embedder: %w", err)
	}

	return provider, nil
}

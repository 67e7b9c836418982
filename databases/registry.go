package databases

import (
	"context"
	"fmt"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/registry"
)

// ============================================================================
// VECTOR STORE INTERFACE AND REGISTRY
// ============================================================================

// DatabaseProvider is the interface all vector store providers implement.
// Scores are cosine similarities in [0,1], higher is better.
type DatabaseProvider interface {
	// Search returns the topK nearest vectors in a collection
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]SearchResult, error)

	// CollectionDimension returns the declared dimension of a vector
	// field, or 0 when the schema cannot be read
	CollectionDimension(ctx context.Context, collection, vectorField string) (int, error)

	// IsLive reports whether the store answers within the probe timeout
	IsLive(ctx context.Context) bool

	// Close releases provider resources
	Close() error
}

// SearchResult is a single hit from a vector search
type SearchResult struct {
	ID       string                 `json:"id"`
	Score    float32                `json:"score"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}

// NewProviderFromConfig builds the vector store named by the config
func NewProviderFromConfig(cfg *config.VectorStoreConfig) (DatabaseProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("vector store config cannot be nil")
	}

	switch cfg.Provider {
	case "milvus":
		return NewMilvusProvider(cfg)
	case "qdrant":
		return NewQdrantProvider(cfg)
	case "chromem":
		return NewChromemProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", cfg.Provider)
	}
}

// DatabaseRegistry manages named vector store providers
type DatabaseRegistry struct {
	*registry.BaseRegistry[DatabaseProvider]
}

// NewDatabaseRegistry creates a new database registry
func NewDatabaseRegistry() *DatabaseRegistry {
	return &DatabaseRegistry{
		BaseRegistry: registry.NewBaseRegistry[DatabaseProvider](),
	}
}

// CreateDatabaseFromConfig builds a provider and registers it under name
func (r *DatabaseRegistry) CreateDatabaseFromConfig(name string, cfg *config.VectorStoreConfig) (DatabaseProvider, error) {
	if name == "" {
		return nil, fmt.Errorf("database name cannot be empty")
	}

	provider, err := NewProviderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database provider: %w", err)
	}

	if err := r.Register(name, provider); err != nil {
		return nil, fmt.Errorf("failed to register database: %w", err)
	}

	return provider, nil
}

package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/databases"
	"github.com/vietbot-labs/ragcore/embedders"
	"github.com/vietbot-labs/ragcore/utils"
)

// ============================================================================
// SEARCH SERVICE
// ============================================================================

// Document is one hit from the document collection
type Document struct {
	DocumentID      string  `json:"document_id"`
	Description     string  `json:"description"`
	SimilarityScore float64 `json:"similarity_score"`
	RerankScore     float64 `json:"rerank_score,omitempty"`
}

// FAQ is one hit from the FAQ collection
type FAQ struct {
	FAQID           string  `json:"faq_id"`
	Question        string  `json:"question"`
	Answer          string  `json:"answer"`
	SimilarityScore float64 `json:"similarity_score"`
	RerankScore     float64 `json:"rerank_score,omitempty"`
}

// Service owns the embedder and the vector store. It embeds queries,
// reconciles vector dimensions against the collection schema, and maps
// raw hits to domain rows.
type Service struct {
	embedder embedders.EmbedderProvider
	store    databases.DatabaseProvider
	cfg      *config.VectorStoreConfig

	mu   sync.RWMutex
	dims map[string]int
}

// NewService creates a search service
func NewService(embedder embedders.EmbedderProvider, store databases.DatabaseProvider, cfg *config.VectorStoreConfig) *Service {
	return &Service{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		dims:     make(map[string]int),
	}
}

// SearchDocuments returns the topK closest documents to the query
func (s *Service) SearchDocuments(ctx context.Context, query string, topK int) ([]Document, error) {
	results, err := s.search(ctx, s.cfg.DocumentCollection, databases.DocumentVectorField, query, topK)
	if err != nil {
		return nil, err
	}

	documents := make([]Document, 0, len(results))
	for _, result := range results {
		// Stored text is cleaned on the way out; NUL bytes and ragged
		// whitespace survive some ingestion pipelines.
		documents = append(documents, Document{
			DocumentID:      metaString(result.Metadata, "document_id", result.ID),
			Description:     utils.CleanText(metaString(result.Metadata, "description", "")),
			SimilarityScore: float64(result.Score),
		})
	}
	return documents, nil
}

// SearchFAQs returns the topK closest FAQ entries to the query
func (s *Service) SearchFAQs(ctx context.Context, query string, topK int) ([]FAQ, error) {
	results, err := s.search(ctx, s.cfg.FAQCollection, databases.FAQVectorField, query, topK)
	if err != nil {
		return nil, err
	}

	faqs := make([]FAQ, 0, len(results))
	for _, result := range results {
		faqs = append(faqs, FAQ{
			FAQID:           metaString(result.Metadata, "faq_id", result.ID),
			Question:        utils.CleanText(metaString(result.Metadata, "question", "")),
			Answer:          utils.CleanText(metaString(result.Metadata, "answer", "")),
			SimilarityScore: float64(result.Score),
		})
	}
	return faqs, nil
}

// CheckConnection probes the store and reports the known dimensions
func (s *Service) CheckConnection(ctx context.Context) (bool, map[string]int) {
	if !s.store.IsLive(ctx) {
		return false, nil
	}

	dims := map[string]int{
		"embedding_model_dimension":     s.embedder.Dimension(),
		"document_collection_dimension": s.collectionDimension(ctx, s.cfg.DocumentCollection, databases.DocumentVectorField),
		"faq_collection_dimension":      s.collectionDimension(ctx, s.cfg.FAQCollection, databases.FAQVectorField),
	}
	return true, dims
}

func (s *Service) search(ctx context.Context, collection, vectorField, query string, topK int) ([]databases.SearchResult, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	expected := s.collectionDimension(ctx, collection, vectorField)
	if expected > 0 && len(vector) != expected {
		slog.Warn("Vector dimension mismatch, adjusting",
			"collection", collection,
			"expected", expected,
			"actual", len(vector))
		vector = adjustDimension(vector, expected)
	}

	return s.store.Search(ctx, collection, vector, topK)
}

// collectionDimension returns the declared dimension of a collection,
// cached after the first successful read. 0 means unknown, in which
// case the query vector is used as-is.
func (s *Service) collectionDimension(ctx context.Context, collection, vectorField string) int {
	s.mu.RLock()
	if dim, ok := s.dims[collection]; ok {
		s.mu.RUnlock()
		return dim
	}
	s.mu.RUnlock()

	dim, err := s.store.CollectionDimension(ctx, collection, vectorField)
	if err != nil {
		slog.Error("Failed to read collection dimension", "collection", collection, "error", err)
		return 0
	}
	if dim <= 0 {
		return 0
	}

	s.mu.Lock()
	s.dims[collection] = dim
	s.mu.Unlock()
	return dim
}

// adjustDimension zero-pads or truncates the vector to the target length
func adjustDimension(vector []float32, target int) []float32 {
	if len(vector) == target {
		return vector
	}
	if len(vector) > target {
		return vector[:target]
	}
	padded := make([]float32, target)
	copy(padded, vector)
	return padded
}

func metaString(metadata map[string]interface{}, key, fallback string) string {
	value, ok := metadata[key]
	if !ok || value == nil {
		return fallback
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

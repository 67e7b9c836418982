package agents

import (
	"context"
	"log/slog"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/search"
)

// ============================================================================
// DOCUMENT RETRIEVER
// ============================================================================

// Retriever pulls candidate documents for the grading stage.
type Retriever struct {
	search SearchService
	cfg    *config.SearchConfig
}

// NewRetriever creates a document retriever
func NewRetriever(searchSvc SearchService, cfg *config.SearchConfig) *Retriever {
	return &Retriever{search: searchSvc, cfg: cfg}
}

// Retrieve vector-searches the document collection. Candidates below
// the similarity floor are still handed over under StatusNotFound: the
// grader holds the stronger cross-encoder signal and gets the last
// word.
func (a *Retriever) Retrieve(ctx context.Context, question string) RetrievalResult {
	docs, err := a.search.SearchDocuments(ctx, question, a.cfg.TopK)
	if err != nil {
		slog.Warn("Document search failed", "error", err)
		return RetrievalResult{Status: StatusError}
	}
	if len(docs) == 0 {
		return RetrievalResult{Status: StatusError}
	}

	relevant := make([]search.Document, 0, len(docs))
	for _, d := range docs {
		if d.SimilarityScore > a.cfg.SimilarityThreshold {
			relevant = append(relevant, d)
		}
	}
	if len(relevant) == 0 {
		slog.Info("No document above similarity threshold, grader decides",
			"threshold", a.cfg.SimilarityThreshold, "candidates", len(docs))
		return RetrievalResult{Status: StatusNotFound, Documents: docs}
	}

	return RetrievalResult{Status: StatusSuccess, Documents: relevant}
}

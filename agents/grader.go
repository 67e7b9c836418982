package agents

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/reranker"
	"github.com/vietbot-labs/ragcore/search"
	"github.com/vietbot-labs/ragcore/utils"
)

// ============================================================================
// DOCUMENT GRADER
// ============================================================================

// passagePreviewRunes caps the passage text sent to the cross-encoder.
const passagePreviewRunes = 500

// Grader rescores retrieved documents with the cross-encoder and keeps
// only candidates clearing both score floors.
type Grader struct {
	scorer    Scorer
	cfg       *config.GraderConfig
	searchCfg *config.SearchConfig
}

// NewGrader creates a document grader
func NewGrader(scorer Scorer, cfg *config.GraderConfig, searchCfg *config.SearchConfig) *Grader {
	return &Grader{scorer: scorer, cfg: cfg, searchCfg: searchCfg}
}

// Grade scores each (question, document) pair and keeps documents
// clearing both the cross-encoder floor and the vector similarity
// floor. A cross-encoder failure is fatal: qualified documents must
// carry a rerank score, so there is no similarity-only path.
func (a *Grader) Grade(ctx context.Context, question string, documents []search.Document) (GradeResult, error) {
	if len(documents) == 0 {
		slog.Warn("No documents to grade")
		return GradeResult{Status: StatusInsufficient}, nil
	}

	passages := make([]string, len(documents))
	for i, d := range documents {
		passages[i] = utils.TruncateRunes(d.Description, passagePreviewRunes)
	}

	scores, err := a.scorer.Score(ctx, question, passages)
	if err != nil {
		return GradeResult{}, fmt.Errorf("rerank documents: %w", err)
	}

	scored := make([]search.Document, len(documents))
	copy(scored, documents)
	for i := range scored {
		if i < len(scores) {
			scored[i].RerankScore = scores[i]
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RerankScore > scored[j].RerankScore
	})

	qualified := make([]search.Document, 0, len(scored))
	for _, d := range scored {
		if reranker.MeetsGradingThresholds(d.RerankScore, a.cfg.RerankThreshold, d.SimilarityScore, a.searchCfg.SimilarityThreshold) {
			qualified = append(qualified, d)
		}
	}
	if len(qualified) == 0 {
		slog.Info("No document passed grading thresholds", "graded", len(scored))
		return GradeResult{Status: StatusInsufficient}, nil
	}

	references := make([]Reference, 0, len(qualified))
	for _, d := range qualified {
		references = append(references, Reference{
			DocumentID:      d.DocumentID,
			Type:            ReferenceDocument,
			RerankScore:     roundScore(d.RerankScore),
			SimilarityScore: roundScore(d.SimilarityScore),
		})
	}

	slog.Info("Documents qualified", "count", len(qualified), "graded", len(scored))
	return GradeResult{
		Status:     StatusSufficient,
		Qualified:  qualified,
		References: references,
	}, nil
}

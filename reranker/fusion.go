package reranker

import "github.com/vietbot-labs/ragcore/config"

// ============================================================================
// SCORE FUSION
// ============================================================================
//
// An FAQ entry is scored against the query three times: question only,
// question plus answer, and answer only. The variants are fused into a
// single weighted score; when every variant clears the consistency
// threshold the entry earns a bonus multiplier. All functions here are
// pure so the maths stays testable without a live cross-encoder.

// VariantScores holds the three cross-encoder scores for one FAQ entry
type VariantScores struct {
	Question       float64 // query vs question
	QuestionAnswer float64 // query vs question + answer
	Answer         float64 // query vs answer
}

// Per-variant caps keep combined passages inside the cross-encoder's
// useful input window.
const (
	combinedVariantMaxRunes = 500
	answerVariantMaxRunes   = 400
)

// FAQVariants builds the three passages scored for one FAQ entry, in
// the order VariantScores expects them back
func FAQVariants(question, answer string) [3]string {
	return [3]string{
		question,
		truncateRunes(question+" "+answer, combinedVariantMaxRunes),
		truncateRunes(answer, answerVariantMaxRunes),
	}
}

// CollectVariantScores regroups a flat score slice (three consecutive
// scores per FAQ entry) into per-entry variant scores
func CollectVariantScores(scores []float64) []VariantScores {
	variants := make([]VariantScores, 0, len(scores)/3)
	for i := 0; i+2 < len(scores); i += 3 {
		variants = append(variants, VariantScores{
			Question:       scores[i],
			QuestionAnswer: scores[i+1],
			Answer:         scores[i+2],
		})
	}
	return variants
}

// FuseVariantScores computes the weighted final score for one FAQ entry
func FuseVariantScores(v VariantScores, cfg *config.FAQConfig) float64 {
	score := v.Question*cfg.QuestionWeight +
		v.QuestionAnswer*cfg.QAWeight +
		v.Answer*cfg.AnswerWeight

	if v.Question > cfg.ConsistencyThreshold &&
		v.QuestionAnswer > cfg.ConsistencyThreshold &&
		v.Answer > cfg.ConsistencyThreshold {
		score *= cfg.ConsistencyBonus
	}

	return score
}

// MeetsGradingThresholds reports whether a document clears both the
// cross-encoder floor and the vector similarity floor
func MeetsGradingThresholds(rerankScore, rerankThreshold, similarity, similarityThreshold float64) bool {
	return rerankScore >= rerankThreshold && similarity >= similarityThreshold
}

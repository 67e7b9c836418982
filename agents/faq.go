package agents

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/llms"
	"github.com/vietbot-labs/ragcore/reranker"
	"github.com/vietbot-labs/ragcore/search"
)

// ============================================================================
// FAQ RESPONDER
// ============================================================================

const faqStandardPrompt = `Bạn là một chuyên viên tư vấn khách hàng người Việt Nam thân thiện và chuyên nghiệp - chuyên gia trả lời các câu hỏi thường gặp và hỗ trợ khách hàng.

Nhiệm vụ:
1. Chào hỏi thân thiện khi khách hàng bắt đầu cuộc trò chuyện
2. Tìm kiếm và trả lời câu hỏi từ cơ sở dữ liệu FAQ
3. Hướng dẫn khách hàng nếu cần hỗ trợ thêm

Câu hỏi người dùng: "%s"

Kết quả tìm kiếm FAQ (đã được rerank):
%s

Hướng dẫn:
1. Kết quả đã được sắp xếp theo độ phù hợp (rerank_score)
2. Nếu FAQ đầu tiên có rerank_score > %v, hãy trả lời dựa trên đó
3. Nếu không có FAQ phù hợp, trả về "NOT_FOUND"
4. Trả lời bằng tiếng Việt, thân thiện và chính xác
5. Có thể kết hợp thông tin từ nhiều FAQ nếu cần

Trả lời:`

const faqFollowupPrompt = `Bạn là một chuyên viên tư vấn khách hàng người Việt Nam thân thiện và chuyên nghiệp - chuyên gia trả lời các câu hỏi thường gặp.

⚠️ ĐÂY LÀ CÂU HỎI FOLLOW-UP (khách hàng hỏi tiếp về chủ đề đang thảo luận)

Ngữ cảnh: %s

Câu hỏi follow-up: "%s"

Kết quả tìm kiếm FAQ (đã được rerank):
%s

Hướng dẫn đặc biệt cho follow-up:
1. Nhận biết đây là câu hỏi tiếp theo, không phải câu hỏi mới
2. Sử dụng FAQ có rerank_score > %v
3. KHÔNG sử dụng markdown, bullet points hay định dạng đặc biệt
4. Nếu không tìm thấy FAQ phù hợp, trả về "NOT_FOUND"
5. Có thể kết hợp thông tin từ ngữ cảnh trước và FAQ mới

Trả lời:`

// rankedFAQ pairs a surviving FAQ entry with its fused cross-encoder
// score.
type rankedFAQ struct {
	search.FAQ
	Final float64
}

// FAQResponder answers from the FAQ collection when a stored entry
// covers the question, and defers to document retrieval otherwise.
type FAQResponder struct {
	llm    llms.LLMProvider
	search SearchService
	scorer Scorer
	cfg    *config.FAQConfig
	topK   int
}

// NewFAQResponder creates an FAQ responder
func NewFAQResponder(llm llms.LLMProvider, searchSvc SearchService, scorer Scorer, cfg *config.FAQConfig, topK int) *FAQResponder {
	return &FAQResponder{
		llm:    llm,
		search: searchSvc,
		scorer: scorer,
		cfg:    cfg,
		topK:   topK,
	}
}

// Answer runs the two-stage FAQ match: a wide vector search followed by
// multi-variant cross-encoder scoring. Search trouble defers to the
// retrieval branch; a cross-encoder failure is fatal because direct
// answers must carry a rerank score.
func (a *FAQResponder) Answer(ctx context.Context, question string, isFollowUp bool, contextSummary string) (FAQResult, error) {
	hits, err := a.search.SearchFAQs(ctx, question, a.topK)
	if err != nil {
		slog.Warn("FAQ search failed, deferring to retrieval", "error", err)
		return deferToRetriever(), nil
	}

	candidates := make([]search.FAQ, 0, len(hits))
	for _, f := range hits {
		if f.SimilarityScore >= a.cfg.VectorThreshold && strings.TrimSpace(f.Question) != "" {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		slog.Info("No FAQ above vector threshold", "threshold", a.cfg.VectorThreshold)
		return deferToRetriever(), nil
	}

	ranked, err := a.rank(ctx, question, candidates)
	if err != nil {
		return FAQResult{}, err
	}
	if len(ranked) == 0 {
		return deferToRetriever(), nil
	}

	best := ranked[0]
	slog.Info("Best FAQ",
		"faq_id", best.FAQID,
		"final", best.Final,
		"similarity", best.SimilarityScore)

	switch {
	case best.SimilarityScore >= a.cfg.ForceSimilarityThreshold:
		// Near-exact vector match: the stored answer stands on its own.
		return directResult(best), nil
	case best.Final >= a.cfg.DirectAnswerThreshold:
		return directResult(best), nil
	case best.Final >= a.cfg.RerankThreshold:
		return a.synthesize(ctx, question, isFollowUp, contextSummary, ranked), nil
	default:
		slog.Info("Best fused score below threshold, deferring",
			"final", best.Final, "threshold", a.cfg.RerankThreshold)
		return deferToRetriever(), nil
	}
}

// rank scores every candidate against the query in three variants and
// sorts by the fused score, best first
func (a *FAQResponder) rank(ctx context.Context, question string, candidates []search.FAQ) ([]rankedFAQ, error) {
	passages := make([]string, 0, len(candidates)*3)
	for _, f := range candidates {
		v := reranker.FAQVariants(f.Question, f.Answer)
		passages = append(passages, v[0], v[1], v[2])
	}

	scores, err := a.scorer.Score(ctx, question, passages)
	if err != nil {
		return nil, fmt.Errorf("rerank FAQ candidates: %w", err)
	}

	variants := reranker.CollectVariantScores(scores)
	if len(variants) > len(candidates) {
		variants = variants[:len(candidates)]
	}

	ranked := make([]rankedFAQ, 0, len(variants))
	for i, v := range variants {
		entry := rankedFAQ{FAQ: candidates[i], Final: reranker.FuseVariantScores(v, a.cfg)}
		entry.RerankScore = entry.Final
		ranked = append(ranked, entry)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Final > ranked[j].Final })
	return ranked, nil
}

// synthesize asks the model to compose an answer from the top matches.
// A NOT_FOUND sentinel or a degenerate reply defers instead of guessing.
func (a *FAQResponder) synthesize(ctx context.Context, question string, isFollowUp bool, contextSummary string, ranked []rankedFAQ) FAQResult {
	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}

	var prompt string
	if isFollowUp && contextSummary != "" {
		prompt = fmt.Sprintf(faqFollowupPrompt, contextSummary, question, formatRankedFAQs(top), a.cfg.RerankThreshold)
	} else {
		prompt = fmt.Sprintf(faqStandardPrompt, question, formatRankedFAQs(top), a.cfg.RerankThreshold)
	}

	answer, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("FAQ synthesis failed, deferring", "error", err)
		return deferToRetriever()
	}
	if strings.Contains(strings.ToUpper(answer), "NOT_FOUND") {
		slog.Info("Model judged FAQ matches insufficient")
		return deferToRetriever()
	}
	if utf8.RuneCountInString(strings.TrimSpace(answer)) < minAnswerRunes {
		slog.Warn("Synthesized FAQ answer too short, deferring")
		return deferToRetriever()
	}

	return FAQResult{
		Status:     StatusSuccess,
		Answer:     answer,
		References: []Reference{faqReference(ranked[0])},
	}
}

func formatRankedFAQs(ranked []rankedFAQ) string {
	if len(ranked) == 0 {
		return "Không tìm thấy FAQ phù hợp"
	}

	lines := make([]string, 0, len(ranked))
	for i, f := range ranked {
		lines = append(lines, fmt.Sprintf(
			"FAQ %d (Rerank: %.3f, Similarity: %.3f):\nQ: %s\nA: %s\n",
			i+1, f.Final, f.SimilarityScore, f.Question, f.Answer))
	}
	return strings.Join(lines, "\n")
}

func directResult(best rankedFAQ) FAQResult {
	return FAQResult{
		Status:     StatusSuccess,
		Answer:     best.Answer,
		References: []Reference{faqReference(best)},
	}
}

func faqReference(f rankedFAQ) Reference {
	return Reference{
		DocumentID:      f.FAQID,
		Type:            ReferenceFAQ,
		RerankScore:     roundScore(f.Final),
		SimilarityScore: roundScore(f.SimilarityScore),
	}
}

func deferToRetriever() FAQResult {
	return FAQResult{Status: StatusNotFound}
}

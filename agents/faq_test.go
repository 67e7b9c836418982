package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vietbot-labs/ragcore/search"
)

func newTestFAQResponder(llm *fakeLLM, searchSvc *fakeSearch, scorer *fakeScorer) *FAQResponder {
	return NewFAQResponder(llm, searchSvc, scorer, testFAQConfig(), 10)
}

func TestFAQResponder_ForceSimilarityEmitsStoredAnswer(t *testing.T) {
	llm := &fakeLLM{response: "không được gọi"}
	searchSvc := &fakeSearch{faqs: []search.FAQ{
		{FAQID: "faq-1", Question: "Giờ làm việc của trung tâm?", Answer: "Trung tâm mở cửa từ 8h đến 17h các ngày trong tuần.", SimilarityScore: 0.91},
	}}
	scorer := &fakeScorer{scores: []float64{0.1, 0.1, 0.1}}

	got, err := newTestFAQResponder(llm, searchSvc, scorer).Answer(context.Background(), "mấy giờ mở cửa", false, "")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if got.Status != StatusSuccess {
		t.Fatalf("Status = %q, want %q", got.Status, StatusSuccess)
	}
	if got.Answer != "Trung tâm mở cửa từ 8h đến 17h các ngày trong tuần." {
		t.Errorf("Answer = %q, want stored answer", got.Answer)
	}
	if len(llm.prompts) != 0 {
		t.Errorf("model called %d times on the direct path, want 0", len(llm.prompts))
	}
	if len(got.References) != 1 || got.References[0].DocumentID != "faq-1" {
		t.Fatalf("References = %+v, want single faq-1", got.References)
	}
	if got.References[0].SimilarityScore != 0.91 {
		t.Errorf("reference similarity = %v, want 0.91", got.References[0].SimilarityScore)
	}
}

func TestFAQResponder_HighFusedScoreEmitsStoredAnswer(t *testing.T) {
	llm := &fakeLLM{response: "không được gọi"}
	searchSvc := &fakeSearch{faqs: []search.FAQ{
		{FAQID: "faq-1", Question: "Cách đổi mật khẩu?", Answer: "Vào phần cài đặt tài khoản và chọn đổi mật khẩu.", SimilarityScore: 0.7},
	}}
	// 0.9*0.5 + 0.8*0.3 + 0.7*0.2 = 0.83, every variant above the
	// consistency floor, so the bonus lifts it to 0.913.
	scorer := &fakeScorer{scores: []float64{0.9, 0.8, 0.7}}

	got, err := newTestFAQResponder(llm, searchSvc, scorer).Answer(context.Background(), "đổi mật khẩu kiểu gì", false, "")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if got.Status != StatusSuccess {
		t.Fatalf("Status = %q, want %q", got.Status, StatusSuccess)
	}
	if len(llm.prompts) != 0 {
		t.Errorf("model called %d times on the direct path, want 0", len(llm.prompts))
	}
	if got.References[0].RerankScore != 0.913 {
		t.Errorf("reference rerank = %v, want 0.913", got.References[0].RerankScore)
	}
}

func TestFAQResponder_MidScoreSynthesizesFromTopMatches(t *testing.T) {
	llm := &fakeLLM{response: "Trung tâm làm việc từ 8 giờ sáng đến 5 giờ chiều, bạn ghé buổi sáng là tiện nhất."}
	searchSvc := &fakeSearch{faqs: []search.FAQ{
		{FAQID: "faq-1", Question: "Giờ làm việc?", Answer: "8h đến 17h.", SimilarityScore: 0.7},
	}}
	// 0.7*0.5 + 0.6*0.3 + 0.5*0.2 = 0.63, no consistency bonus.
	scorer := &fakeScorer{scores: []float64{0.7, 0.6, 0.5}}

	got, err := newTestFAQResponder(llm, searchSvc, scorer).Answer(context.Background(), "giờ làm việc thế nào", false, "")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if got.Status != StatusSuccess {
		t.Fatalf("Status = %q, want %q", got.Status, StatusSuccess)
	}
	if got.Answer != llm.response {
		t.Errorf("Answer = %q, want synthesized reply", got.Answer)
	}
	if len(llm.prompts) != 1 {
		t.Fatalf("model called %d times, want 1", len(llm.prompts))
	}
	if !strings.Contains(llm.prompts[0], "FAQ 1 (Rerank: 0.630, Similarity: 0.700):") {
		t.Errorf("prompt missing scored FAQ block:\n%s", llm.prompts[0])
	}
}

func TestFAQResponder_SynthesisUsesFollowupPromptWithContext(t *testing.T) {
	llm := &fakeLLM{response: "Dạ đúng rồi, mức phí đó áp dụng cho cả năm học bạn nhé."}
	searchSvc := &fakeSearch{faqs: []search.FAQ{
		{FAQID: "faq-1", Question: "Học phí?", Answer: "5 triệu một năm.", SimilarityScore: 0.7},
	}}
	scorer := &fakeScorer{scores: []float64{0.7, 0.6, 0.5}}

	_, err := newTestFAQResponder(llm, searchSvc, scorer).Answer(context.Background(), "cả năm luôn hả", true, "Đang hỏi về học phí")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if len(llm.prompts) != 1 {
		t.Fatalf("model called %d times, want 1", len(llm.prompts))
	}
	if !strings.Contains(llm.prompts[0], "CÂU HỎI FOLLOW-UP") {
		t.Error("prompt is not the follow-up variant")
	}
	if !strings.Contains(llm.prompts[0], "Ngữ cảnh: Đang hỏi về học phí") {
		t.Error("prompt missing context summary")
	}
}

func TestFAQResponder_SynthesisRejections(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"sentinel", "NOT_FOUND"},
		{"sentinel in prose", "Rất tiếc, not_found trong dữ liệu."},
		{"too short", "ngắn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{response: tt.response}
			searchSvc := &fakeSearch{faqs: []search.FAQ{
				{FAQID: "faq-1", Question: "Giờ làm việc?", Answer: "8h đến 17h.", SimilarityScore: 0.7},
			}}
			scorer := &fakeScorer{scores: []float64{0.7, 0.6, 0.5}}

			got, err := newTestFAQResponder(llm, searchSvc, scorer).Answer(context.Background(), "giờ làm việc thế nào", false, "")
			if err != nil {
				t.Fatalf("Answer() error = %v", err)
			}
			if got.Status != StatusNotFound {
				t.Errorf("Status = %q, want %q", got.Status, StatusNotFound)
			}
		})
	}
}

func TestFAQResponder_DefersWithoutCandidates(t *testing.T) {
	tests := []struct {
		name      string
		searchSvc *fakeSearch
	}{
		{"search error", &fakeSearch{faqsErr: errors.New("store down")}},
		{"no hits", &fakeSearch{}},
		{"below vector threshold", &fakeSearch{faqs: []search.FAQ{
			{FAQID: "faq-1", Question: "Giờ làm việc?", Answer: "8h.", SimilarityScore: 0.3},
		}}},
		{"empty stored question", &fakeSearch{faqs: []search.FAQ{
			{FAQID: "faq-1", Question: "   ", Answer: "8h.", SimilarityScore: 0.9},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{response: "không được gọi"}
			scorer := &fakeScorer{scores: []float64{0.9, 0.9, 0.9}}

			got, err := newTestFAQResponder(llm, tt.searchSvc, scorer).Answer(context.Background(), "giờ làm việc", false, "")
			if err != nil {
				t.Fatalf("Answer() error = %v", err)
			}
			if got.Status != StatusNotFound {
				t.Errorf("Status = %q, want %q", got.Status, StatusNotFound)
			}
			if scorer.calls != 0 {
				t.Errorf("cross-encoder called %d times without candidates, want 0", scorer.calls)
			}
		})
	}
}

func TestFAQResponder_LowScoresDefer(t *testing.T) {
	llm := &fakeLLM{response: "không được gọi"}
	searchSvc := &fakeSearch{faqs: []search.FAQ{
		{FAQID: "faq-1", Question: "Giờ làm việc?", Answer: "8h đến 17h.", SimilarityScore: 0.6},
	}}
	scorer := &fakeScorer{scores: []float64{0.2, 0.2, 0.2}}

	got, err := newTestFAQResponder(llm, searchSvc, scorer).Answer(context.Background(), "giờ làm việc", false, "")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Status != StatusNotFound {
		t.Errorf("Status = %q, want %q", got.Status, StatusNotFound)
	}
	if len(llm.prompts) != 0 {
		t.Errorf("model called %d times below threshold, want 0", len(llm.prompts))
	}
}

func TestFAQResponder_ScorerFailureIsFatal(t *testing.T) {
	llm := &fakeLLM{}
	searchSvc := &fakeSearch{faqs: []search.FAQ{
		{FAQID: "faq-1", Question: "Giờ làm việc?", Answer: "8h.", SimilarityScore: 0.7},
	}}
	scorer := &fakeScorer{err: errors.New("cross-encoder down")}

	_, err := newTestFAQResponder(llm, searchSvc, scorer).Answer(context.Background(), "giờ làm việc", false, "")
	if err == nil {
		t.Fatal("Answer() error = nil, want fatal rerank error")
	}
	if !strings.Contains(err.Error(), "cross-encoder down") {
		t.Errorf("error %q does not wrap the scorer failure", err)
	}
}

func TestFAQResponder_RanksBestCandidateFirst(t *testing.T) {
	llm := &fakeLLM{}
	searchSvc := &fakeSearch{faqs: []search.FAQ{
		{FAQID: "faq-weak", Question: "Câu hỏi A?", Answer: "Trả lời A.", SimilarityScore: 0.6},
		{FAQID: "faq-strong", Question: "Câu hỏi B?", Answer: "Trả lời B dài hơn một chút.", SimilarityScore: 0.7},
	}}
	scorer := &fakeScorer{scores: []float64{0.1, 0.1, 0.1, 0.9, 0.9, 0.9}}

	got, err := newTestFAQResponder(llm, searchSvc, scorer).Answer(context.Background(), "câu hỏi B", false, "")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if got.Status != StatusSuccess {
		t.Fatalf("Status = %q, want %q", got.Status, StatusSuccess)
	}
	if got.Answer != "Trả lời B dài hơn một chút." {
		t.Errorf("Answer = %q, want the higher-scored entry", got.Answer)
	}
	if got.References[0].DocumentID != "faq-strong" {
		t.Errorf("reference = %q, want faq-strong", got.References[0].DocumentID)
	}
}

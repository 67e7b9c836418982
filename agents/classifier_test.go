package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vietbot-labs/ragcore/conversation"
)

func newTestClassifier(llm *fakeLLM, searchSvc *fakeSearch) *Classifier {
	return NewClassifier(llm, conversation.NewRewriter(llm, 4), searchSvc)
}

func TestClassifier_ParsesModelVerdict(t *testing.T) {
	llm := &fakeLLM{response: `{"context_summary": "Khách không hài lòng", "agent": "CHATTER", "reasoning": "Cảm xúc tiêu cực"}`}
	c := newTestClassifier(llm, &fakeSearch{})

	got := c.Classify(context.Background(), "Dịch vụ của các bạn chán quá", nil)

	if got.Label != LabelChatter {
		t.Errorf("Label = %q, want %q", got.Label, LabelChatter)
	}
	if got.ContextSummary != "Khách không hài lòng" {
		t.Errorf("ContextSummary = %q", got.ContextSummary)
	}
	if got.Reasoning != "Cảm xúc tiêu cực" {
		t.Errorf("Reasoning = %q", got.Reasoning)
	}
	if got.ContextualizedQuestion != "Dịch vụ của các bạn chán quá" {
		t.Errorf("ContextualizedQuestion = %q, want original", got.ContextualizedQuestion)
	}
}

func TestClassifier_AcceptsVerdictWrappedInProse(t *testing.T) {
	llm := &fakeLLM{response: `Kết quả phân loại: {"context_summary": "", "agent": "OTHER", "reasoning": "ngoài phạm vi"} hy vọng hữu ích`}
	c := newTestClassifier(llm, &fakeSearch{})

	got := c.Classify(context.Background(), "Đặt giúp tôi một bàn ăn tối nay", nil)
	if got.Label != LabelOther {
		t.Errorf("Label = %q, want %q", got.Label, LabelOther)
	}
}

func TestClassifier_ProbeDownRoutesToReporter(t *testing.T) {
	llm := &fakeLLM{response: `{"agent": "FAQ"}`}
	c := newTestClassifier(llm, &fakeSearch{down: true})

	got := c.Classify(context.Background(), "Khung năng lực số là gì?", nil)

	if got.Label != LabelReporter {
		t.Errorf("Label = %q, want %q", got.Label, LabelReporter)
	}
	if got.ContextSummary != "Hệ thống mất kết nối" {
		t.Errorf("ContextSummary = %q", got.ContextSummary)
	}
	if len(llm.prompts) != 0 {
		t.Errorf("model called %d times during outage, want 0", len(llm.prompts))
	}
}

func TestClassifier_InvalidLabelFallsBackToKeywords(t *testing.T) {
	llm := &fakeLLM{response: `{"context_summary": "", "agent": "SUPERVISOR", "reasoning": ""}`}
	c := newTestClassifier(llm, &fakeSearch{})

	got := c.Classify(context.Background(), "Hệ thống bị lỗi không truy cập được", nil)
	if got.Label != LabelReporter {
		t.Errorf("Label = %q, want %q", got.Label, LabelReporter)
	}
}

func TestClassifier_UnparseableReplyFallsBackToKeywords(t *testing.T) {
	llm := &fakeLLM{response: "Xin chào, tôi không chắc."}
	c := newTestClassifier(llm, &fakeSearch{})

	got := c.Classify(context.Background(), "Giờ làm việc của trung tâm?", nil)
	if got.Label != LabelFAQ {
		t.Errorf("Label = %q, want %q", got.Label, LabelFAQ)
	}
}

func TestClassifier_GenerateErrorFallsBackOnOriginal(t *testing.T) {
	llm := &fakeLLM{err: errors.New("model unavailable")}
	c := newTestClassifier(llm, &fakeSearch{})

	got := c.Classify(context.Background(), "Tôi rất thất vọng về dịch vụ", nil)

	if got.Label != LabelChatter {
		t.Errorf("Label = %q, want %q", got.Label, LabelChatter)
	}
	if got.IsFollowUp {
		t.Error("IsFollowUp = true after model failure, want false")
	}
	if got.ContextualizedQuestion != "Tôi rất thất vọng về dịch vụ" {
		t.Errorf("ContextualizedQuestion = %q, want original", got.ContextualizedQuestion)
	}
}

func TestClassifier_PromptCarriesBothQuestionForms(t *testing.T) {
	llm := &fakeLLM{response: `{"agent": "FAQ"}`}
	c := newTestClassifier(llm, &fakeSearch{})

	c.Classify(context.Background(), "Khung năng lực số gồm những gì?", nil)

	if len(llm.prompts) != 1 {
		t.Fatalf("model called %d times, want 1", len(llm.prompts))
	}
	if !strings.Contains(llm.prompts[0], `Câu hỏi gốc: "Khung năng lực số gồm những gì?"`) {
		t.Error("prompt missing original question")
	}
	if !strings.Contains(llm.prompts[0], "Không có lịch sử") {
		t.Error("prompt missing empty-history marker")
	}
}

func TestFallbackClassify(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"complaint", "Tôi muốn khiếu nại về thái độ phục vụ", LabelChatter},
		{"angry", "quá tệ", LabelChatter},
		{"outage report", "Trang web không hoạt động từ sáng nay", LabelReporter},
		{"broken", "Máy in bị hỏng rồi", LabelReporter},
		{"definition", "Chuyển đổi số là gì", LabelFAQ},
		{"how to", "Hướng dẫn đăng ký tài khoản", LabelFAQ},
		{"unmatched defaults to FAQ", "abc xyz", LabelFAQ},
		{"chatter wins over faq", "Dịch vụ tệ, tại sao vậy", LabelChatter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fallbackClassify(tt.question); got != tt.want {
				t.Errorf("fallbackClassify(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/vietbot-labs/ragcore/conversation"
	"github.com/vietbot-labs/ragcore/search"
)

func TestGenerator_NoDocumentsIsError(t *testing.T) {
	llm := &fakeLLM{response: "không được gọi"}
	g := NewGenerator(llm, nil)

	got := g.Respond(context.Background(), GeneratorInput{Question: "kỹ năng số là gì"})

	if got.Status != StatusError {
		t.Errorf("Status = %q, want %q", got.Status, StatusError)
	}
	if answer := CollectAnswer(got.Chunks); answer != generatorNoDocumentsAnswer {
		t.Errorf("answer = %q, want fixed notice", answer)
	}
	if len(got.References) != 0 {
		t.Errorf("References = %d, want 0", len(got.References))
	}
	if len(llm.prompts) != 0 {
		t.Errorf("model called %d times without documents, want 0", len(llm.prompts))
	}
}

func TestGenerator_StandardPromptCarriesDocumentsAndHistory(t *testing.T) {
	llm := &fakeLLM{response: "Khung năng lực số gồm sáu nhóm kỹ năng chính bạn nhé."}
	g := NewGenerator(llm, nil)

	in := GeneratorInput{
		Question: "Khung năng lực số gồm những gì?",
		Documents: []search.Document{
			{DocumentID: "doc-1", Description: "Khung năng lực số gồm 6 nhóm kỹ năng.", SimilarityScore: 0.85},
		},
		History: []conversation.Turn{
			{Role: conversation.RoleUser, Content: "Xin chào"},
			{Role: conversation.RoleAssistant, Content: "Chào bạn, tôi có thể giúp gì?"},
		},
	}
	got := g.Respond(context.Background(), in)

	if got.Status != StatusSuccess {
		t.Fatalf("Status = %q, want %q", got.Status, StatusSuccess)
	}
	CollectAnswer(got.Chunks)

	if len(llm.prompts) != 1 {
		t.Fatalf("model called %d times, want 1", len(llm.prompts))
	}
	prompt := llm.prompts[0]
	if !strings.Contains(prompt, `Câu hỏi của khách hàng: "Khung năng lực số gồm những gì?"`) {
		t.Error("prompt missing question")
	}
	if !strings.Contains(prompt, "[Tài liệu 1] (Độ liên quan: 0.85)\nKhung năng lực số gồm 6 nhóm kỹ năng.") {
		t.Error("prompt missing document block")
	}
	if !strings.Contains(prompt, "👤 Khách hàng: Xin chào") {
		t.Error("prompt missing user turn")
	}
	if !strings.Contains(prompt, "🤖 Trợ lý: Chào bạn, tôi có thể giúp gì?") {
		t.Error("prompt missing assistant turn")
	}
}

func TestGenerator_FollowupPromptUsesContextSummary(t *testing.T) {
	llm := &fakeLLM{response: "Nhóm thứ ba là giao tiếp và hợp tác trên môi trường số."}
	g := NewGenerator(llm, nil)

	in := GeneratorInput{
		Question:       "Chi tiết nhóm thứ 3?",
		Documents:      []search.Document{{DocumentID: "doc-1", Description: "Chi tiết các nhóm kỹ năng.", SimilarityScore: 0.7}},
		IsFollowUp:     true,
		ContextSummary: "Đang thảo luận về khung năng lực số",
	}
	got := g.Respond(context.Background(), in)
	CollectAnswer(got.Chunks)

	prompt := llm.prompts[0]
	if !strings.Contains(prompt, "NGỮ CẢNH CUỘC TRÒ CHUYỆN:\nĐang thảo luận về khung năng lực số") {
		t.Error("prompt missing context summary")
	}
	if !strings.Contains(prompt, `CÂU HỎI FOLLOW-UP CỦA KHÁCH HÀNG: "Chi tiết nhóm thứ 3?"`) {
		t.Error("prompt missing follow-up question")
	}
}

func TestGenerator_FollowupWithoutSummaryDerivesTopic(t *testing.T) {
	llm := &fakeLLM{response: "Bạn đang hỏi tiếp về khung năng lực số đúng không?"}
	g := NewGenerator(llm, nil)

	in := GeneratorInput{
		Question:   "Chi tiết hơn đi",
		Documents:  []search.Document{{DocumentID: "doc-1", Description: "Tài liệu.", SimilarityScore: 0.7}},
		IsFollowUp: true,
		History: []conversation.Turn{
			{Role: conversation.RoleUser, Content: "Khung năng lực số là gì?"},
			{Role: conversation.RoleAssistant, Content: "Là bộ chuẩn gồm 6 nhóm kỹ năng."},
		},
	}
	got := g.Respond(context.Background(), in)
	CollectAnswer(got.Chunks)

	if !strings.Contains(llm.prompts[0], "Chủ đề đang thảo luận: Khung năng lực số là gì?") {
		t.Error("prompt missing derived topic")
	}
}

func TestGenerator_PromptCapsDocumentCount(t *testing.T) {
	llm := &fakeLLM{response: "Câu trả lời tổng hợp từ các tài liệu trên."}
	g := NewGenerator(llm, nil)

	docs := make([]search.Document, 6)
	for i := range docs {
		docs[i] = search.Document{DocumentID: "doc", Description: "nội dung", SimilarityScore: 0.5}
	}
	got := g.Respond(context.Background(), GeneratorInput{Question: "q", Documents: docs})
	CollectAnswer(got.Chunks)

	prompt := llm.prompts[0]
	if !strings.Contains(prompt, "[Tài liệu 5]") {
		t.Error("prompt missing fifth document")
	}
	if strings.Contains(prompt, "[Tài liệu 6]") {
		t.Error("prompt carries more than five documents")
	}
}

func TestGenerator_DedupesReferencesAndAttachesPreviews(t *testing.T) {
	llm := &fakeLLM{response: "Câu trả lời đủ dài để không bị thay thế."}
	g := NewGenerator(llm, nil)

	in := GeneratorInput{
		Question: "q",
		Documents: []search.Document{
			{DocumentID: "doc-1", Description: "Mô tả tài liệu một.", SimilarityScore: 0.8},
			{DocumentID: "doc-2", Description: "Mô tả tài liệu hai.", SimilarityScore: 0.7},
		},
		References: []Reference{
			{DocumentID: "doc-1", Type: ReferenceDocument, RerankScore: 0.9},
			{DocumentID: "doc-1", Type: ReferenceDocument, RerankScore: 0.4},
			{DocumentID: "doc-2", Type: ReferenceDocument, RerankScore: 0.7},
			{DocumentID: "", Type: ReferenceDocument},
		},
	}
	got := g.Respond(context.Background(), in)
	CollectAnswer(got.Chunks)

	if len(got.References) != 2 {
		t.Fatalf("References = %d, want 2", len(got.References))
	}
	if got.References[0].RerankScore != 0.9 {
		t.Errorf("first occurrence lost: rerank = %v, want 0.9", got.References[0].RerankScore)
	}
	if got.References[0].Description != "Mô tả tài liệu một." {
		t.Errorf("References[0].Description = %q, want document preview", got.References[0].Description)
	}
	if got.References[1].DocumentID != "doc-2" {
		t.Errorf("References[1] = %q, want doc-2", got.References[1].DocumentID)
	}
}

func TestGenerator_DegenerateAnswerIsReplaced(t *testing.T) {
	llm := &fakeLLM{chunks: []string{"ok"}}
	g := NewGenerator(llm, nil)

	in := GeneratorInput{
		Question:  "q",
		Documents: []search.Document{{DocumentID: "doc-1", Description: "Tài liệu.", SimilarityScore: 0.5}},
	}
	got := g.Respond(context.Background(), in)

	if answer := CollectAnswer(got.Chunks); answer != generatorFallbackAnswer {
		t.Errorf("answer = %q, want retry suggestion", answer)
	}
	if got.Status != StatusSuccess {
		t.Errorf("Status = %q, want %q", got.Status, StatusSuccess)
	}
}

func TestGenerator_FormatHistoryKeepsRecentTurns(t *testing.T) {
	g := NewGenerator(&fakeLLM{}, nil)

	history := []conversation.Turn{
		{Role: conversation.RoleUser, Content: "câu một"},
		{Role: conversation.RoleAssistant, Content: "trả lời một"},
		{Role: conversation.RoleUser, Content: "câu hai"},
		{Role: conversation.RoleAssistant, Content: "trả lời hai"},
		{Role: conversation.RoleUser, Content: "câu ba"},
		{Role: conversation.RoleAssistant, Content: ""},
	}
	got := g.formatHistory(history)

	if strings.Contains(got, "câu một") {
		t.Error("history kept a turn past the window")
	}
	if !strings.Contains(got, "👤 Khách hàng: câu ba") {
		t.Errorf("history missing recent turn: %q", got)
	}
	if strings.Contains(got, "🤖 Trợ lý: \n") || strings.HasSuffix(got, "🤖 Trợ lý: ") {
		t.Errorf("history kept an empty turn: %q", got)
	}
}

func TestGenerator_FormatHistoryWithoutCounterUsesEstimates(t *testing.T) {
	g := NewGenerator(&fakeLLM{}, nil)

	huge := strings.Repeat("dữ liệu lịch sử rất dài ", 400)
	history := []conversation.Turn{
		{Role: conversation.RoleUser, Content: huge},
		{Role: conversation.RoleAssistant, Content: "trả lời ngắn"},
	}
	got := g.formatHistory(history)

	if strings.Contains(got, "dữ liệu lịch sử rất dài") {
		t.Error("oversized turn survived the estimated budget")
	}
	if !strings.Contains(got, "🤖 Trợ lý: trả lời ngắn") {
		t.Errorf("history missing recent turn: %q", got)
	}
}

func TestGenerator_FormatHistoryEmpty(t *testing.T) {
	g := NewGenerator(&fakeLLM{}, nil)
	if got := g.formatHistory(nil); got != "Không có lịch sử" {
		t.Errorf("formatHistory(nil) = %q", got)
	}
}

func TestExtractContextSummary(t *testing.T) {
	tests := []struct {
		name    string
		history []conversation.Turn
		want    string
	}{
		{
			name: "last exchange",
			history: []conversation.Turn{
				{Role: conversation.RoleUser, Content: "Khung năng lực số là gì?"},
				{Role: conversation.RoleAssistant, Content: "Là bộ chuẩn kỹ năng."},
			},
			want: "Chủ đề đang thảo luận: Khung năng lực số là gì?\nĐã trả lời: Là bộ chuẩn kỹ năng....",
		},
		{
			name: "unanswered trailing question",
			history: []conversation.Turn{
				{Role: conversation.RoleUser, Content: "Câu một?"},
				{Role: conversation.RoleAssistant, Content: "Trả lời một."},
				{Role: conversation.RoleUser, Content: "Câu hai?"},
			},
			want: "Chủ đề đang thảo luận: Câu hai?",
		},
		{
			name:    "empty history",
			history: nil,
			want:    "Đây là câu hỏi đầu tiên",
		},
		{
			name:    "single message",
			history: []conversation.Turn{{Role: conversation.RoleUser, Content: "Xin chào"}},
			want:    "Đây là câu hỏi đầu tiên",
		},
		{
			name: "no user message",
			history: []conversation.Turn{
				{Role: conversation.RoleAssistant, Content: "A"},
				{Role: conversation.RoleAssistant, Content: "B"},
			},
			want: "Đang trong cuộc trò chuyện",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractContextSummary(tt.history); got != tt.want {
				t.Errorf("extractContextSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/vietbot-labs/ragcore/conversation"
	"github.com/vietbot-labs/ragcore/llms"
	"github.com/vietbot-labs/ragcore/search"
	"github.com/vietbot-labs/ragcore/utils"
)

// ============================================================================
// ANSWER GENERATOR
// ============================================================================

const generatorStandardPrompt = `Bạn là một chuyên viên tư vấn khách hàng người Việt Nam thân thiện và chuyên nghiệp.

Câu hỏi của khách hàng: "%s"

Thông tin tham khảo từ tài liệu:
%s

Lịch sử trò chuyện gần đây:
%s

Yêu cầu trả lời:
- Trả lời bằng giọng văn tự nhiên như người Việt Nam nói chuyện
- KHÔNG sử dụng markdown, bullet points hay định dạng đặc biệt
- Trả lời thẳng vào vấn đề, ngắn gọn súc tích
- Dựa vào thông tin tài liệu nhưng diễn đạt theo cách hiểu của bạn
- Kết thúc bằng câu hỏi ngắn để tiếp tục hỗ trợ nếu cần

Hãy trả lời như đang nói chuyện trực tiếp với khách hàng:`

const generatorFollowupPrompt = `Bạn là một chuyên viên tư vấn khách hàng người Việt Nam thân thiện và chuyên nghiệp.

🔍 NGỮ CẢNH CUỘC TRÒ CHUYỆN:
%s

📝 LỊCH SỬ GẦN NHẤT:
%s

❓ CÂU HỎI FOLLOW-UP CỦA KHÁCH HÀNG: "%s"

📚 THÔNG TIN TÀI LIỆU LIÊN QUAN:
%s

⚠️ YÊU CẦU ĐẶC BIỆT cho follow-up question:
1. Nhận biết rằng khách hàng đang hỏi tiếp về chủ đề đã thảo luận
2. Tham chiếu đến thông tin đã cung cấp trước đó một cách tự nhiên
3. Trả lời cụ thể vào phần mà khách hàng muốn biết thêm
4. KHÔNG lặp lại toàn bộ thông tin đã nói, chỉ tập trung vào phần được hỏi

📋 YÊU CẦU CHUNG:
- Trả lời bằng giọng văn tự nhiên như người Việt Nam nói chuyện
- KHÔNG sử dụng markdown, bullet points hay định dạng đặc biệt
- Ngắn gọn, súc tích, đúng trọng tâm
- Kết thúc bằng câu hỏi để tiếp tục hỗ trợ nếu cần

Hãy trả lời:`

const (
	generatorNoDocumentsAnswer = "Không có tài liệu để tạo câu trả lời"
	generatorFallbackAnswer    = "Tôi đã tìm thấy thông tin liên quan nhưng gặp khó khăn trong việc tạo câu trả lời. Bạn có thể diễn đạt câu hỏi theo cách khác được không?"
)

const (
	// promptDocumentLimit caps how many graded documents reach the
	// prompt.
	promptDocumentLimit = 5

	// historyMessageLimit and historyTokenBudget bound the recent
	// history block. The token fit runs after the message cut so a
	// single huge turn cannot crowd out the documents.
	historyMessageLimit = 4
	historyTokenBudget  = 1024
)

// Generator composes the final answer from graded documents.
type Generator struct {
	llm     llms.LLMProvider
	counter *utils.TokenCounter
}

// NewGenerator creates an answer generator
func NewGenerator(llm llms.LLMProvider, counter *utils.TokenCounter) *Generator {
	return &Generator{llm: llm, counter: counter}
}

// GeneratorInput carries everything the generator needs for one answer.
type GeneratorInput struct {
	Question       string
	Documents      []search.Document
	References     []Reference
	History        []conversation.Turn
	IsFollowUp     bool
	ContextSummary string
}

// Respond streams the generated answer. Degenerate model output is
// replaced by a retry suggestion, so the stream always carries a usable
// answer. Without documents there is nothing to generate from and the
// stream carries a fixed notice under StatusError.
func (g *Generator) Respond(ctx context.Context, in GeneratorInput) StreamedAnswer {
	if len(in.Documents) == 0 {
		return StreamedAnswer{
			Chunks: BufferedAnswer(generatorNoDocumentsAnswer),
			Status: StatusError,
		}
	}

	docText := formatDocuments(in.Documents)
	historyText := g.formatHistory(in.History)

	var prompt string
	if in.IsFollowUp {
		summary := in.ContextSummary
		if summary == "" {
			summary = extractContextSummary(in.History)
		}
		prompt = fmt.Sprintf(generatorFollowupPrompt, summary, historyText, in.Question, docText)
	} else {
		prompt = fmt.Sprintf(generatorStandardPrompt, in.Question, docText, historyText)
	}

	return StreamedAnswer{
		Chunks:     streamAnswer(ctx, g.llm, prompt, generatorFallbackAnswer),
		References: prepareReferences(in.References, in.Documents),
		Status:     StatusSuccess,
	}
}

// prepareReferences dedupes by document identifier, first occurrence
// wins, and attaches a short passage preview to each reference
func prepareReferences(references []Reference, documents []search.Document) []Reference {
	previews := make(map[string]string, len(documents))
	for _, d := range documents {
		if _, ok := previews[d.DocumentID]; !ok {
			previews[d.DocumentID] = utils.TruncateRunes(d.Description, passagePreviewRunes)
		}
	}

	seen := make(map[string]bool, len(references))
	unique := make([]Reference, 0, len(references))
	for _, ref := range references {
		if ref.DocumentID == "" || seen[ref.DocumentID] {
			continue
		}
		seen[ref.DocumentID] = true
		ref.Description = previews[ref.DocumentID]
		unique = append(unique, ref)
	}
	return unique
}

func formatDocuments(documents []search.Document) string {
	if len(documents) == 0 {
		return "Không có tài liệu tham khảo"
	}

	if len(documents) > promptDocumentLimit {
		documents = documents[:promptDocumentLimit]
	}
	lines := make([]string, 0, len(documents))
	for i, d := range documents {
		lines = append(lines, fmt.Sprintf("[Tài liệu %d] (Độ liên quan: %.2f)\n%s",
			i+1, d.SimilarityScore, d.Description))
	}
	return strings.Join(lines, "\n\n")
}

// formatHistory renders the recent turns that fit the token budget
func (g *Generator) formatHistory(history []conversation.Turn) string {
	if len(history) == 0 {
		return "Không có lịch sử"
	}

	recent := history
	if len(recent) > historyMessageLimit {
		recent = recent[len(recent)-historyMessageLimit:]
	}

	messages := make([]utils.Message, 0, len(recent))
	for _, turn := range recent {
		messages = append(messages, utils.Message{Role: turn.Role, Content: turn.Content})
	}
	if g.counter != nil {
		messages = g.counter.FitWithinLimit(messages, historyTokenBudget)
	} else {
		messages = fitByEstimate(messages, historyTokenBudget)
	}

	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		role := "🤖 Trợ lý"
		if msg.Role == conversation.RoleUser {
			role = "👤 Khách hàng"
		}
		lines = append(lines, role+": "+msg.Content)
	}
	if len(lines) == 0 {
		return "Không có lịch sử"
	}
	return strings.Join(lines, "\n")
}

// fitByEstimate is the budget cut for generators built without a token
// counter. It walks from the newest turn backwards using the rough
// character-based estimate, so the newest turns always survive.
func fitByEstimate(messages []utils.Message, maxTokens int) []utils.Message {
	fitted := []utils.Message{}
	total := 0
	for i := len(messages) - 1; i >= 0; i-- {
		cost := utils.EstimateTokens(messages[i].Role) + utils.EstimateTokens(messages[i].Content)
		if total+cost > maxTokens {
			break
		}
		fitted = append([]utils.Message{messages[i]}, fitted...)
		total += cost
	}
	return fitted
}

// extractContextSummary names the topic under discussion from the last
// answered question
func extractContextSummary(history []conversation.Turn) string {
	if len(history) < 2 {
		return "Đây là câu hỏi đầu tiên"
	}

	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != conversation.RoleUser {
			continue
		}
		prevQuestion := history[i].Content
		for j := i + 1; j < len(history); j++ {
			if history[j].Role == conversation.RoleAssistant {
				return fmt.Sprintf("Chủ đề đang thảo luận: %s\nĐã trả lời: %s...",
					prevQuestion, utils.TruncateRunes(history[j].Content, 200))
			}
		}
		return "Chủ đề đang thảo luận: " + prevQuestion
	}

	return "Đang trong cuộc trò chuyện"
}

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/vietbot-labs/ragcore/conversation"
	"github.com/vietbot-labs/ragcore/llms"
	"github.com/vietbot-labs/ragcore/utils"
)

// ============================================================================
// CLASSIFIER
// ============================================================================

const classifyPrompt = `Bạn là chuyên viên đào tạo kỹ năng chuyển đổi số cho người dân - người điều phối chính của hệ thống chatbot.

Nhiệm vụ:
1. Dựa vào lịch sử hội thoại và câu hỏi hiện tại, hãy xác định ngữ cảnh (context) mà người dùng đang đề cập đến.
2. Phân loại câu hỏi và chọn agent phù hợp để xử lý.

Các agent có thể chọn:
- FAQ: Chào hỏi thân thiện, câu hỏi thường gặp, hoặc các yêu cầu liên quan đến đào tạo kỹ năng chuyển đổi số cho người dân.
- OTHER: Câu hỏi hoặc yêu cầu nằm ngoài phạm vi chuyển đổi số.
- CHATTER: Người dùng có dấu hiệu không hài lòng, giận dữ, hoặc cần được an ủi, làm dịu.
- REPORTER: Khi người dùng phản ánh lỗi, mất kết nối, hoặc vấn đề kỹ thuật của hệ thống.

Đầu vào:
Câu hỏi gốc: "%s"
Câu hỏi đã được làm rõ ngữ cảnh: "%s"
Lịch sử hội thoại: %s
Trạng thái hệ thống: %s
Có phải follow-up question: %s
Context liên quan: %s

Hãy trả lời đúng định dạng JSON:
{
  "context_summary": "Tóm tắt ngắn gọn ngữ cảnh (nếu có)",
  "agent": "FAQ" hoặc "CHATTER" hoặc "REPORTER" hoặc "OTHER",
  "reasoning": "Lý do chọn agent này"
}

Chỉ trả về JSON, không thêm text nào khác.`

// jsonObjectPattern grabs the first JSON object in a reply that may
// carry prose around it.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{[^{}]+\}`)

// Fallback vocabulary, checked as substrings of the lowercased question.
var (
	// Negative affect routes to the consoling agent.
	chatterKeywords = []string{
		"tệ", "kém", "tồi", "không hài lòng", "giận",
		"phản đối", "khiếu nại", "thất vọng", "tức giận",
	}
	// System failure reports route to the status agent.
	reporterKeywords = []string{
		"lỗi", "không hoạt động", "bị lỗi", "không kết nối",
		"không truy cập được", "hỏng", "không phản hồi",
	}
	// Interrogatives lean FAQ.
	faqKeywords = []string{
		"là gì", "như thế nào", "sao", "tại sao", "có phải",
		"giờ làm việc", "liên hệ", "hướng dẫn", "cách", "thế nào",
	}
)

type classificationReply struct {
	ContextSummary string `json:"context_summary"`
	Agent          string `json:"agent"`
	Reasoning      string `json:"reasoning"`
}

// Classifier decides the routing label for a request and rewrites
// follow-up questions into standalone ones.
type Classifier struct {
	llm      llms.LLMProvider
	rewriter *conversation.Rewriter
	search   SearchService
}

// NewClassifier creates a classifier
func NewClassifier(llm llms.LLMProvider, rewriter *conversation.Rewriter, search SearchService) *Classifier {
	return &Classifier{
		llm:      llm,
		rewriter: rewriter,
		search:   search,
	}
}

// Classify runs the full routing decision for one request. It never
// fails: every error path degrades to a keyword-based label with the
// original question.
func (c *Classifier) Classify(ctx context.Context, question string, history []conversation.Turn) Classification {
	live, _ := c.search.CheckConnection(ctx)
	if !live {
		return Classification{
			Label:                  LabelReporter,
			ContextualizedQuestion: question,
			ContextSummary:         "Hệ thống mất kết nối",
		}
	}

	resolved := c.rewriter.Resolve(ctx, question, history)
	slog.Info("Question resolved",
		"contextualized", resolved.ContextualizedQuestion,
		"is_followup", resolved.IsFollowUp)

	prompt := fmt.Sprintf(classifyPrompt,
		question,
		resolved.ContextualizedQuestion,
		historyExcerpt(history),
		"Bình thường",
		yesNo(resolved.IsFollowUp),
		relevantContextExcerpt(resolved.RelevantContext),
	)

	response, err := c.llm.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("Classification failed, falling back to keywords", "error", err)
		return Classification{
			Label:                  fallbackClassify(question),
			ContextualizedQuestion: question,
		}
	}

	reply, ok := parseClassification(response)
	label := strings.ToUpper(strings.TrimSpace(reply.Agent))
	if !ok || !validLabel(label) {
		label = fallbackClassify(resolved.ContextualizedQuestion)
	}

	return Classification{
		Label:                  label,
		ContextualizedQuestion: resolved.ContextualizedQuestion,
		ContextSummary:         reply.ContextSummary,
		IsFollowUp:             resolved.IsFollowUp,
		Reasoning:              reply.Reasoning,
	}
}

// parseClassification extracts the JSON verdict from a model reply
func parseClassification(response string) (classificationReply, bool) {
	match := jsonObjectPattern.FindString(response)
	if match == "" {
		return classificationReply{}, false
	}

	var reply classificationReply
	if err := json.Unmarshal([]byte(match), &reply); err != nil {
		slog.Warn("Unparseable classification reply", "error", err)
		return classificationReply{}, false
	}
	return reply, true
}

// fallbackClassify routes by vocabulary when the model's verdict is
// unusable
func fallbackClassify(question string) string {
	q := strings.ToLower(question)

	for _, kw := range chatterKeywords {
		if strings.Contains(q, kw) {
			return LabelChatter
		}
	}
	for _, kw := range reporterKeywords {
		if strings.Contains(q, kw) {
			return LabelReporter
		}
	}
	for _, kw := range faqKeywords {
		if strings.Contains(q, kw) {
			return LabelFAQ
		}
	}

	// Unmatched questions still deserve a document search.
	return LabelFAQ
}

func validLabel(label string) bool {
	switch label {
	case LabelFAQ, LabelChatter, LabelReporter, LabelOther:
		return true
	}
	return false
}

// historyExcerpt renders the last six messages for prompt use
func historyExcerpt(history []conversation.Turn) string {
	text := conversation.FormatHistory(history, 6, 200)
	if text == "" {
		return "Không có lịch sử"
	}
	return text
}

func relevantContextExcerpt(context string) string {
	if context == "" {
		return "Không có"
	}
	return utils.TruncateRunes(context, 300)
}

func yesNo(v bool) string {
	if v {
		return "Có"
	}
	return "Không"
}

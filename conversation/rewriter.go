package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vietbot-labs/ragcore/llms"
)

// ============================================================================
// QUESTION REWRITER
// ============================================================================

// needClarifySentinel marks a rewrite the model could not ground in the
// history; such rewrites are discarded.
const needClarifySentinel = "[cần làm rõ]"

const (
	rewriteWindowTurns    = 2
	rewriteWindowMaxChars = 150
)

const rewritePrompt = `Bạn là chuyên gia phân tích ngữ cảnh hội thoại.

Nhiệm vụ: Phân tích lịch sử hội thoại để chuyển đổi câu hỏi hiện tại thành câu hỏi độc lập, đầy đủ ngữ cảnh.

Lịch sử hội thoại:
%s

Câu hỏi hiện tại: "%s"

Nguyên tắc xử lý:

1. **Nhận diện câu hỏi phụ thuộc ngữ cảnh:**
   - Chứa đại từ: "nó", "đó", "này", "cái đó", "điều này"
   - Chứa từ chỉ thứ tự: "thứ nhất", "thứ 2", "mục 3", "điểm 4", "cái cuối"
   - Chứa từ tham chiếu: "tiếp tục", "chi tiết hơn", "giải thích thêm", "còn...", "thế còn...", "OK", "Okay", "có", "co", "vâng",...
   - Chỉ có một từ/cụm từ ngắn: "chi tiết", "ví dụ", "tại sao", "như thế nào"

2. **Tìm ngữ cảnh từ lịch sử:**
   - Quét ngược từ tin nhắn gần nhất
   - Xác định chủ đề chính đang được thảo luận
   - Tìm danh sách, khái niệm, thuật ngữ được đề cập
   - Lưu ý các con số, tên riêng, địa danh cụ thể

3. **Chuyển đổi câu hỏi:**
   - Thay thế đại từ bằng danh từ cụ thể
   - Thay số thứ tự bằng tên đầy đủ của mục đó
   - Bổ sung chủ đề/ngữ cảnh nếu câu hỏi quá ngắn
   - Giữ nguyên ý định và giọng điệu của người hỏi
   - Đảm bảo câu hỏi mới có thể hiểu được mà không cần đọc lịch sử

4. **Trường hợp đặc biệt:**
   - Nếu câu hỏi đã đầy đủ ngữ cảnh → Giữ nguyên
   - Nếu không tìm thấy ngữ cảnh phù hợp → Giữ nguyên và thêm "[cần làm rõ]"
   - Nếu câu hỏi mơ hồ có nhiều cách hiểu → Chọn cách hiểu hợp lý nhất dựa trên ngữ cảnh gần nhất

5. **Quy tắc đầu ra:**
   - CHỈ trả về câu hỏi đã được làm rõ
   - KHÔNG thêm lời giải thích, mở đầu hay kết luận
   - KHÔNG thay đổi ngôn ngữ gốc (giữ nguyên tiếng Việt/tiếng Anh)
   - KHÔNG thêm thông tin mà người dùng không hỏi

Ví dụ minh họa:

Ví dụ 1:
Lịch sử: "Khung năng lực số có 6 nhóm kỹ năng..."
Câu hỏi: "Chi tiết kỹ năng số 3"
→ Câu hỏi làm rõ: "Chi tiết về nhóm kỹ năng thứ 3 'Giao tiếp và hợp tác trên môi trường số' trong khung năng lực số"

Ví dụ 2:
Lịch sử: "Python có 3 cách xử lý file: read(), write(), append()"
Câu hỏi: "Cái thứ 2 dùng như thế nào?"
→ Câu hỏi làm rõ: "Phương thức write() trong Python dùng như thế nào để xử lý file?"

Ví dụ 3:
Lịch sử: "React và Vue đều là framework frontend phổ biến"
Câu hỏi: "Thế còn Angular?"
→ Câu hỏi làm rõ: "Angular là framework frontend như thế nào so với React và Vue?"

Ví dụ 4:
Lịch sử: [Không có]
Câu hỏi: "Giá iPhone 15 bao nhiêu?"
→ Câu hỏi làm rõ: "Giá iPhone 15 bao nhiêu?"

Bây giờ hãy xử lý câu hỏi trên:`

// Result describes how a question relates to the conversation so far
type Result struct {
	OriginalQuestion       string
	ContextualizedQuestion string
	IsFollowUp             bool
	RelevantContext        string
}

// Rewriter turns follow-up questions into standalone ones. Rewrites
// are cached per (context window, question) pair.
type Rewriter struct {
	llm   llms.LLMProvider
	cache *rewriteCache
}

// NewRewriter creates a rewriter with a bounded rewrite cache
func NewRewriter(llm llms.LLMProvider, cacheSize int) *Rewriter {
	return &Rewriter{
		llm:   llm,
		cache: newRewriteCache(cacheSize),
	}
}

// Resolve decides whether the question is a follow-up and rewrites it
// into a standalone form when it is. A failed or refused rewrite falls
// back to the original question marked as non-follow-up.
func (r *Rewriter) Resolve(ctx context.Context, question string, history []Turn) Result {
	passthrough := Result{
		OriginalQuestion:       question,
		ContextualizedQuestion: question,
		IsFollowUp:             false,
		RelevantContext:        "",
	}

	if !IsFollowUp(question, history) {
		return passthrough
	}

	window := FormatHistory(history, rewriteWindowTurns, rewriteWindowMaxChars)

	if cached, ok := r.cache.get(window, question); ok {
		return Result{
			OriginalQuestion:       question,
			ContextualizedQuestion: cached,
			IsFollowUp:             true,
			RelevantContext:        ContextSummary(history),
		}
	}

	prompt := fmt.Sprintf(rewritePrompt, window, question)
	rewritten, err := r.llm.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("Question rewrite failed, keeping original", "error", err)
		return passthrough
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" || strings.Contains(rewritten, needClarifySentinel) {
		return passthrough
	}

	r.cache.put(window, question, rewritten)

	return Result{
		OriginalQuestion:       question,
		ContextualizedQuestion: rewritten,
		IsFollowUp:             true,
		RelevantContext:        ContextSummary(history),
	}
}

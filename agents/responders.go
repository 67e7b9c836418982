package agents

import (
	"context"
	"fmt"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/conversation"
	"github.com/vietbot-labs/ragcore/llms"
)

// ============================================================================
// TERMINAL RESPONDERS
// ============================================================================
//
// The small terminal agents: each turns one routing outcome into a
// final streamed answer. They never fail; a broken model falls back to
// a fixed reply carrying the support hotline.

const chatterPrompt = `Bạn là một chuyên viên tư vấn khách hàng người Việt Nam thân thiện và chuyên nghiệp - chuyên gia xử lý cảm xúc và an ủi khách hàng.

Nhiệm vụ: An ủi, làm dịu cảm xúc tiêu cực của khách hàng và cung cấp thông tin liên hệ hỗ trợ.

Nội dung khách hàng: "%s"
Lịch sử hội thoại: %s
Số điện thoại hỗ trợ: %s

Hướng dẫn:
1. Thể hiện sự thông cảm và hiểu biết cảm xúc khách hàng
2. Xin lỗi một cách chân thành
3. Đảm bảo sẽ cải thiện dịch vụ
4. Cung cấp số hotline để được hỗ trợ trực tiếp
5. Giữ thái độ ấm áp, chuyên nghiệp

Trả lời:`

const chatterFallbackAnswer = `Tôi rất hiểu cảm xúc của bạn và chân thành xin lỗi về những bất tiện này.

Ý kiến của bạn rất quan trọng với chúng tôi và chúng tôi sẽ không ngừng cải thiện để mang đến trải nghiệm tốt hơn.

Để được hỗ trợ trực tiếp và giải quyết nhanh chóng, bạn vui lòng liên hệ:
📞 Hotline: %s

Đội ngũ chuyên viên sẽ hỗ trợ bạn 24/7. Cảm ơn bạn đã chia sẻ!`

// Chatter consoles an upset customer and hands out the hotline.
type Chatter struct {
	llm llms.LLMProvider
	cfg *config.ResponderConfig
}

// NewChatter creates a consoling responder
func NewChatter(llm llms.LLMProvider, cfg *config.ResponderConfig) *Chatter {
	return &Chatter{llm: llm, cfg: cfg}
}

func (a *Chatter) Respond(ctx context.Context, question string, history []conversation.Turn) StreamedAnswer {
	prompt := fmt.Sprintf(chatterPrompt, question, fullHistory(history), a.cfg.SupportPhone)
	fallback := fmt.Sprintf(chatterFallbackAnswer, a.cfg.SupportPhone)
	return StreamedAnswer{
		Chunks:     streamAnswer(ctx, a.llm, prompt, fallback),
		References: []Reference{{DocumentID: "support_contact", Type: ReferenceSupport}},
		Status:     StatusSuccess,
	}
}

const reporterHealthyAnswer = `Hệ thống đang hoạt động bình thường. Tôi có thể hỗ trợ bạn ngay bây giờ.

Vui lòng đặt câu hỏi và tôi sẽ tìm thông tin phù hợp cho bạn.`

const reporterOutageAnswer = `🔧 THÔNG BÁO BẢO TRÌ HỆ THỐNG

Hiện tại hệ thống đang trong quá trình bảo trì để nâng cấp và cải thiện chất lượng dịch vụ.

Thời gian dự kiến: Đang cập nhật
Tình trạng: %s

Để được hỗ trợ ngay lập tức, bạn vui lòng:
📞 Gọi hotline: %s
⏰ Thời gian hỗ trợ: 24/7

Chúng tôi xin lỗi về sự bất tiện này và cảm ơn sự kiên nhẫn của bạn!`

// Reporter announces the system status. It is the only terminal agent
// that never consults the model, so it stays usable during an outage.
type Reporter struct {
	search SearchService
	cfg    *config.ResponderConfig
}

// NewReporter creates a status responder
func NewReporter(searchSvc SearchService, cfg *config.ResponderConfig) *Reporter {
	return &Reporter{search: searchSvc, cfg: cfg}
}

func (a *Reporter) Respond(ctx context.Context) StreamedAnswer {
	answer := reporterHealthyAnswer
	if live, _ := a.search.CheckConnection(ctx); !live {
		answer = fmt.Sprintf(reporterOutageAnswer, "Mất kết nối cơ sở dữ liệu", a.cfg.SupportPhone)
	}
	return StreamedAnswer{
		Chunks:     BufferedAnswer(answer),
		References: []Reference{{DocumentID: "system_status", Type: ReferenceSystem}},
		Status:     StatusSuccess,
	}
}

const otherPrompt = `Bạn là một chuyên viên tư vấn khách hàng người Việt Nam thân thiện và chuyên nghiệp. - xử lý các yêu cầu ngoài phạm vi hỗ trợ.

Nhiệm vụ: Thông báo lịch sự khi yêu cầu nằm ngoài phạm vi và hướng dẫn khách hàng.

Yêu cầu của khách hàng: "%s"
Số điện thoại hỗ trợ: %s

Hướng dẫn:
1. Giải thích rằng yêu cầu nằm ngoài phạm vi hỗ trợ hiện tại
2. Đề xuất liên hệ hotline để được tư vấn cụ thể hơn
3. Giữ thái độ lịch sự và chuyên nghiệp
4. Không từ chối một cách thô lỗ

Trả lời:`

const otherFallbackAnswer = `Cảm ơn bạn đã liên hệ!

Yêu cầu của bạn có vẻ nằm ngoài phạm vi hỗ trợ hiện tại của tôi. Đây không phải là tác vụ mà tôi có thể xử lý.

Để được tư vấn và hỗ trợ tốt nhất cho yêu cầu cụ thể này, bạn vui lòng:
📞 Liên hệ hotline: %s
⏰ Thời gian: 24/7

Đội ngũ chuyên viên sẽ hỗ trợ bạn một cách chuyên nghiệp nhất!`

// Other declines out-of-scope requests politely.
type Other struct {
	llm llms.LLMProvider
	cfg *config.ResponderConfig
}

// NewOther creates an out-of-scope responder
func NewOther(llm llms.LLMProvider, cfg *config.ResponderConfig) *Other {
	return &Other{llm: llm, cfg: cfg}
}

func (a *Other) Respond(ctx context.Context, question string) StreamedAnswer {
	prompt := fmt.Sprintf(otherPrompt, question, a.cfg.SupportPhone)
	fallback := fmt.Sprintf(otherFallbackAnswer, a.cfg.SupportPhone)
	return StreamedAnswer{
		Chunks: streamAnswer(ctx, a.llm, prompt, fallback),
		Status: StatusSuccess,
	}
}

const notEnoughInfoPrompt = `Bạn là một chuyên viên tư vấn khách hàng người Việt Nam thân thiện và chuyên nghiệp - chuyên gia về chuyển đổi số và công nghệ.

TÌNH HUỐNG: Hệ thống không tìm thấy thông tin chính xác trong cơ sở dữ liệu để trả lời câu hỏi này.

Câu hỏi người dùng: "%s"

NHIỆM VỤ CỦA BẠN:
1. Thừa nhận rằng bạn chưa có thông tin chính thức trong hệ thống
2. NHƯNG dựa trên kiến thức chuyên môn của bạn về chuyển đổi số, hãy cung cấp:
   - Câu trả lời hữu ích và mang tính tham khảo
   - Chia sẻ kiến thức chung về chủ đề (nếu có)
   - Gợi ý hướng tìm hiểu hoặc giải pháp thay thế
3. Cuối cùng, đề xuất khách hàng liên hệ hotline để được tư vấn chính xác hơn

YÊU CẦU:
- Trả lời bằng tiếng Việt tự nhiên, thân thiện
- Không sử dụng markdown hay bullet points
- Thể hiện sự chuyên nghiệp nhưng cũng khiêm tốn
- Luôn làm rõ đây là ý kiến tham khảo, không phải thông tin chính thức

Số điện thoại hỗ trợ: %s

Hãy trả lời:`

const notEnoughInfoFallbackAnswer = "Xin lỗi, hệ thống gặp lỗi. Vui lòng liên hệ %s để được hỗ trợ."

// NotEnoughInfo answers from general knowledge when the corpus has
// nothing, flagged as non-official advice.
type NotEnoughInfo struct {
	llm llms.LLMProvider
	cfg *config.ResponderConfig
}

// NewNotEnoughInfo creates a general-knowledge responder
func NewNotEnoughInfo(llm llms.LLMProvider, cfg *config.ResponderConfig) *NotEnoughInfo {
	return &NotEnoughInfo{llm: llm, cfg: cfg}
}

func (a *NotEnoughInfo) Respond(ctx context.Context, question string) StreamedAnswer {
	prompt := fmt.Sprintf(notEnoughInfoPrompt, question, a.cfg.SupportPhone)
	fallback := fmt.Sprintf(notEnoughInfoFallbackAnswer, a.cfg.SupportPhone)
	return StreamedAnswer{
		Chunks:     streamAnswer(ctx, a.llm, prompt, fallback),
		References: []Reference{{DocumentID: "llm_knowledge", Type: ReferenceGeneralKnowledge}},
		Status:     StatusSuccess,
	}
}

// fullHistory renders every turn for prompts without a length budget
func fullHistory(history []conversation.Turn) string {
	text := conversation.FormatHistory(history, 0, 0)
	if text == "" {
		return "Không có lịch sử"
	}
	return text
}

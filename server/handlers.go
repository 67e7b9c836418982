package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietbot-labs/ragcore"
	"github.com/vietbot-labs/ragcore/agents"
	"github.com/vietbot-labs/ragcore/conversation"
	"github.com/vietbot-labs/ragcore/utils"
	"github.com/vietbot-labs/ragcore/workflow"
)

// ============================================================================
// REQUEST / RESPONSE TYPES
// ============================================================================

// chatRequest is the /chat payload. History items may be role/content
// objects or bare strings; parseHistory accepts both.
type chatRequest struct {
	Question string            `json:"question"`
	History  []json.RawMessage `json:"history"`
	Stream   bool              `json:"stream"`
}

type chatResponse struct {
	Answer     string             `json:"answer"`
	References []agents.Reference `json:"references"`
	Status     string             `json:"status"`
}

type healthResponse struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	DatabaseConnected bool   `json:"database_connected"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError reports a failure in the {"detail": ...} shape clients expect.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// parseHistory converts raw history items into turns. Objects carry their
// own role; bare strings alternate user/assistant starting from the user.
func parseHistory(raw []json.RawMessage) ([]conversation.Turn, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	turns := make([]conversation.Turn, 0, len(raw))
	for i, item := range raw {
		var turn conversation.Turn
		if err := json.Unmarshal(item, &turn); err == nil && turn.Content != "" {
			if turn.Role != conversation.RoleAssistant {
				turn.Role = conversation.RoleUser
			}
			turns = append(turns, turn)
			continue
		}

		var text string
		if err := json.Unmarshal(item, &text); err != nil {
			return nil, fmt.Errorf("history item %d is neither an object nor a string", i)
		}
		role := conversation.RoleUser
		if i%2 == 1 {
			role = conversation.RoleAssistant
		}
		turns = append(turns, conversation.Turn{Role: role, Content: text})
	}
	return turns, nil
}

// ============================================================================
// ENDPOINT HANDLERS
// ============================================================================

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "RAG Multi-Agent Chatbot API",
		"version": ragcore.Version,
		"status":  "running",
		"endpoints": map[string]string{
			"chat":    "/chat",
			"health":  "/health",
			"agents":  "/agents",
			"status":  "/status",
			"metrics": "/metrics",
		},
		"environment": s.environment(),
	})
}

func (s *Server) environment() map[string]string {
	return map[string]string{
		"llm_url":              s.cfg.LLM.BaseURL,
		"vector_store":         s.cfg.VectorStore.Provider,
		"vector_store_address": fmt.Sprintf("%s:%d", s.cfg.VectorStore.Host, s.cfg.VectorStore.Port),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	engine, search := s.pipeline()

	connected := false
	if search != nil {
		connected, _ = search.CheckConnection(r.Context())
	}

	var resp healthResponse
	switch {
	case engine != nil && connected:
		resp = healthResponse{Status: "healthy", Message: "Hệ thống hoạt động bình thường", DatabaseConnected: true}
	case engine != nil:
		resp = healthResponse{Status: "degraded", Message: "Mất kết nối cơ sở dữ liệu", DatabaseConnected: false}
	case search != nil:
		resp = healthResponse{Status: "degraded", Message: "Workflow chưa được khởi tạo", DatabaseConnected: connected}
	default:
		resp = healthResponse{Status: "unhealthy", Message: "Hệ thống gặp sự cố", DatabaseConnected: false}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	engine, _ := s.pipeline()
	status := "ready"
	if engine == nil {
		status = "not_initialized"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"agents": map[string]string{
			"SUPERVISOR":      "Điều phối chính, phân loại yêu cầu và chọn agent phù hợp",
			"FAQ":             "Tìm kiếm và trả lời câu hỏi thường gặp",
			"RETRIEVER":       "Tìm kiếm thông tin từ cơ sở dữ liệu tài liệu",
			"GRADER":          "Đánh giá chất lượng thông tin tìm được",
			"GENERATOR":       "Tạo câu trả lời từ thông tin đã được đánh giá",
			"NOT_ENOUGH_INFO": "Xử lý trường hợp không đủ thông tin",
			"CHATTER":         "An ủi và xử lý cảm xúc tiêu cực của khách hàng",
			"REPORTER":        "Thông báo trạng thái hệ thống và bảo trì",
			"OTHER":           "Xử lý yêu cầu ngoài phạm vi hỗ trợ",
		},
		"workflow": "(supervisor || faq || retriever) -> router -> (chatter|reporter|other|faq_answer|grader -> generator|not_enough_info) -> end",
		"status":   status,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	engine, search := s.pipeline()

	workflowState := "not_initialized"
	if engine != nil {
		workflowState = "ready"
	}
	storeState := "disconnected"
	if search != nil {
		if connected, _ := search.CheckConnection(r.Context()); connected {
			storeState = "connected"
		}
	}

	providers := map[string][]string{}
	if catalog := s.providerCatalog(); catalog != nil {
		providers = catalog.ProviderNames()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"service":              "rag-api",
		"port":                 s.cfg.Server.Port,
		"workflow_initialized": engine != nil,
		"environment":          s.environment(),
		"providers":            providers,
		"components": map[string]string{
			"http_server":  "running",
			"rag_workflow": workflowState,
			"vector_store": storeState,
		},
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	engine, _ := s.pipeline()
	if engine == nil {
		writeError(w, http.StatusServiceUnavailable, "Workflow not initialized. Please check server logs.")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ")
		return
	}

	// Validation runs before any model work.
	if ok, msg := utils.ValidateQuestion(req.Question); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	history, err := parseHistory(req.History)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Lịch sử hội thoại không hợp lệ")
		return
	}

	slog.Info("Processing question",
		"question", utils.TruncateRunes(req.Question, 100),
		"history_turns", len(history),
		"stream", req.Stream,
		"request_id", RequestID(r.Context()))

	if req.Stream {
		s.streamChat(w, r, engine, req.Question, history)
		return
	}

	answer, err := engine.Run(r.Context(), req.Question, history)
	if err != nil {
		slog.Error("Chat turn failed", "error", err, "request_id", RequestID(r.Context()))
		chatTurns.WithLabelValues("json", agents.StatusError).Inc()
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống khi xử lý câu hỏi")
		return
	}

	references := answer.References
	if references == nil {
		references = []agents.Reference{}
	}
	chatTurns.WithLabelValues("json", answer.Status).Inc()
	writeJSON(w, http.StatusOK, chatResponse{
		Answer:     answer.Answer,
		References: references,
		Status:     answer.Status,
	})
}

// streamChat relays workflow events as SSE frames. The final status for
// metrics comes from the end or error event; a client that disconnects
// mid-stream cancels the run through the request context.
func (s *Server) streamChat(w http.ResponseWriter, r *http.Request, engine Pipeline, question string, history []conversation.Turn) {
	sse := newSSEWriter(w)
	events := engine.RunStreaming(r.Context(), question, history)

	finalStatus := agents.StatusError
	for ev := range events {
		if err := sse.Send(ev); err != nil {
			slog.Warn("SSE client gone", "error", err, "request_id", RequestID(r.Context()))
			for range events {
			}
			break
		}
		switch ev.Type {
		case workflow.EventEnd:
			if ev.Status != nil {
				finalStatus = *ev.Status
			}
		case workflow.EventError:
			finalStatus = agents.StatusError
		}
	}
	chatTurns.WithLabelValues("stream", finalStatus).Inc()
}

package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vietbot-labs/ragcore/workflow"
)

// ============================================================================
// SERVER-SENT EVENTS
// ============================================================================

// sseWriter frames workflow events as Server-Sent Events. Every frame is
// flushed immediately; the X-Accel-Buffering header keeps reverse proxies
// from holding chunks back.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) *sseWriter {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, _ := w.(http.Flusher)
	return &sseWriter{w: w, flusher: flusher}
}

// Send writes one `data: <json>` frame. An error means the client is gone.
func (s *sseWriter) Send(ev workflow.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

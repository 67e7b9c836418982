package llms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vietbot-labs/ragcore/config"
)

func newOllamaTestProvider(t *testing.T, serverURL string) *OllamaProvider {
	t.Helper()
	provider, err := NewOllamaProvider(&config.LLMConfig{
		Provider: "ollama",
		BaseURL:  serverURL,
		Model:    "test-model",
		Timeout:  5,
	})
	if err != nil {
		t.Fatalf("NewOllamaProvider() error = %v", err)
	}
	return provider
}

func TestOllamaProvider_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("request path = %q, want /api/generate", r.URL.Path)
		}

		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload error = %v", err)
		}
		if payload["model"] != "test-model" {
			t.Errorf("payload model = %v, want test-model", payload["model"])
		}
		if payload["stream"] != false {
			t.Errorf("payload stream = %v, want false", payload["stream"])
		}
		if payload["prompt"] != "Xin chào" {
			t.Errorf("payload prompt = %v, want Xin chào", payload["prompt"])
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"response": "Chào bạn!",
			"done":     true,
		})
	}))
	defer server.Close()

	provider := newOllamaTestProvider(t, server.URL)

	got, err := provider.Generate(context.Background(), "Xin chào")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Chào bạn!" {
		t.Errorf("Generate() = %q, want %q", got, "Chào bạn!")
	}
}

func TestOllamaProvider_Generate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	provider := newOllamaTestProvider(t, server.URL)

	_, err := provider.Generate(context.Background(), "câu hỏi")
	if err == nil {
		t.Fatal("Generate() error = nil, want error")
	}
	var llmErr *LLMError
	if !errors.As(err, &llmErr) {
		t.Fatalf("Generate() error type = %T, want *LLMError", err)
	}
	if llmErr.Provider != "ollama" {
		t.Errorf("LLMError.Provider = %q, want ollama", llmErr.Provider)
	}
}

func TestOllamaProvider_GenerateStreaming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunks := []ollamaGenerateChunk{
			{Response: "Hà ", Done: false},
			{Response: "Nội", Done: false},
			{Response: ".", Done: true},
		}
		enc := json.NewEncoder(w)
		for _, chunk := range chunks {
			enc.Encode(chunk)
		}
	}))
	defer server.Close()

	provider := newOllamaTestProvider(t, server.URL)

	ch, err := provider.GenerateStreaming(context.Background(), "Thủ đô Việt Nam?")
	if err != nil {
		t.Fatalf("GenerateStreaming() error = %v", err)
	}

	var parts []string
	for chunk := range ch {
		parts = append(parts, chunk)
	}

	got := strings.Join(parts, "")
	if got != "Hà Nội." {
		t.Errorf("streamed response = %q, want %q", got, "Hà Nội.")
	}
	if len(parts) != 3 {
		t.Errorf("chunk count = %d, want 3", len(parts))
	}
}

func TestOllamaProvider_GenerateStreaming_ConnectError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	provider := newOllamaTestProvider(t, server.URL)

	if _, err := provider.GenerateStreaming(context.Background(), "q"); err == nil {
		t.Error("GenerateStreaming() error = nil, want connection error")
	}
}

func TestOllamaProvider_GenerateStreaming_Cancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enc := json.NewEncoder(w)
		enc.Encode(ollamaGenerateChunk{Response: "một"})
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	provider := newOllamaTestProvider(t, server.URL)

	ch, err := provider.GenerateStreaming(ctx, "q")
	if err != nil {
		t.Fatalf("GenerateStreaming() error = %v", err)
	}

	<-ch // first chunk arrives
	cancel()

	// Channel must close once the context is cancelled
	for range ch {
	}
}

package llms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/ollama"
)

// ============================================================================
// OLLAMA LLM PROVIDER
// ============================================================================

// OllamaProvider implements LLMProvider for Ollama
type OllamaProvider struct {
	config *config.LLMConfig
	client *ollama.Client
}

// ollamaGenerateChunk is one NDJSON object from /api/generate
type ollamaGenerateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaProvider creates a new Ollama LLM provider from config
func NewOllamaProvider(cfg *config.LLMConfig) (*OllamaProvider, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &OllamaProvider{
		config: cfg,
		client: ollama.NewClientWithTimeout(cfg.BaseURL, time.Duration(cfg.Timeout)*time.Second),
	}, nil
}

// Generate implements LLMProvider.Generate
func (o *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.MakeRequest(ctx, "/api/generate", o.buildPayload(prompt, false))
	if err != nil {
		return "", NewLLMError("ollama", "generate", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", NewLLMError("ollama", "generate",
			fmt.Sprintf("API error (status %d): %s", resp.StatusCode, string(body)), nil)
	}

	var chunk ollamaGenerateChunk
	if err := json.NewDecoder(resp.Body).Decode(&chunk); err != nil {
		return "", NewLLMError("ollama", "generate", "failed to decode response", err)
	}

	return chunk.Response, nil
}

// GenerateStreaming implements LLMProvider.GenerateStreaming
// The request is issued before returning so connection and status errors
// surface synchronously; decode failures mid-stream close the channel
func (o *OllamaProvider) GenerateStreaming(ctx context.Context, prompt string) (<-chan string, error) {
	resp, err := o.client.MakeStreamingRequest(ctx, "/api/generate", o.buildPayload(prompt, true))
	if err != nil {
		return nil, NewLLMError("ollama", "generate_streaming", "request failed", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, NewLLMError("ollama", "generate_streaming",
			fmt.Sprintf("API error (status %d): %s", resp.StatusCode, string(body)), nil)
	}

	ch := make(chan string, 64)

	go func() {
		defer close(ch)
		defer resp.Body.Close()

		decoder := json.NewDecoder(resp.Body)
		for {
			var chunk ollamaGenerateChunk
			if err := decoder.Decode(&chunk); err != nil {
				if err != io.EOF && ctx.Err() == nil {
					slog.Error("Ollama stream decode failed", "model", o.config.Model, "error", err)
				}
				return
			}

			if chunk.Response != "" {
				select {
				case ch <- chunk.Response:
				case <-ctx.Done():
					return
				}
			}

			if chunk.Done {
				return
			}
		}
	}()

	return ch, nil
}

// ModelName implements LLMProvider.ModelName
func (o *OllamaProvider) ModelName() string {
	return o.config.Model
}

// Close implements LLMProvider.Close
func (o *OllamaProvider) Close() error {
	return nil
}

func (o *OllamaProvider) buildPayload(prompt string, stream bool) map[string]interface{} {
	return map[string]interface{}{
		"model":  o.config.Model,
		"prompt": prompt,
		"stream": stream,
		"options": map[string]interface{}{
			"temperature": o.config.Temperature,
			"num_predict": o.config.MaxTokens,
		},
	}
}

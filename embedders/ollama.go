package embedders

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/ollama"
)

// ============================================================================
// OLLAMA EMBEDDER
// ============================================================================

// Serializes Ollama embedding requests. The llama runner aborts when it
// receives concurrent embedding calls for the same model.
var ollamaEmbedMu sync.Mutex

const ollamaEmbedMaxRetries = 3

// OllamaEmbedder produces vectors through a local Ollama instance
type OllamaEmbedder struct {
	config *config.EmbedderConfig
	client *ollama.Client
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaEmbedder creates an embedder backed by Ollama
func NewOllamaEmbedder(cfg *config.EmbedderConfig) (*OllamaEmbedder, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, NewEmbedderError("ollama", "init", "invalid embedder config", err)
	}

	return &OllamaEmbedder{
		config: cfg,
		client: ollama.NewClientWithTimeout(cfg.BaseURL, time.Duration(cfg.Timeout)*time.Second),
	}, nil
}

// Embed converts text into an L2-normalized vector
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ollamaEmbedMu.Lock()
	defer ollamaEmbedMu.Unlock()

	slog.Debug("Ollama embedding request", "model", e.config.Model, "text_length", len(text))

	request := ollamaEmbedRequest{
		Model:  e.config.Model,
		Prompt: text,
	}

	var resp *http.Response
	var err error
	for attempt := 0; attempt < ollamaEmbedMaxRetries; attempt++ {
		resp, err = e.client.MakeRequest(ctx, "/api/embeddings", request)
		if err == nil {
			break
		}

		slog.Debug("Ollama embedding retry", "attempt", attempt+1, "error", err)
		if attempt < ollamaEmbedMaxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, NewEmbedderError("ollama", "embed", "request cancelled", ctx.Err())
			case <-time.After(time.Duration(attempt+1) * time.Second):
			}
		}
	}

	if err != nil {
		slog.Error("Ollama embedding failed", "error", err, "model", e.config.Model)
		return nil, NewEmbedderError("ollama", "embed", "failed to send request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewEmbedderError("ollama", "embed",
			"API returned status "+resp.Status+": "+string(body), nil)
	}

	var response ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, NewEmbedderError("ollama", "embed", "failed to decode response", err)
	}

	if len(response.Embedding) == 0 {
		return nil, NewEmbedderError("ollama", "embed", "received empty embedding", nil)
	}

	return normalizeL2(response.Embedding), nil
}

// Dimension returns the configured vector dimension
func (e *OllamaEmbedder) Dimension() int {
	return e.config.Dimension
}

// ModelName returns the embedding model identifier
func (e *OllamaEmbedder) ModelName() string {
	return e.config.Model
}

// Close releases provider resources
func (e *OllamaEmbedder) Close() error {
	return nil
}

// normalizeL2 scales the vector to unit length. Zero vectors pass
// through unchanged.
func normalizeL2(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / norm)
	}
	return normalized
}

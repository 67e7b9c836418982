package embedders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vietbot-labs/ragcore/config"
)

// ============================================================================
// OPENAI-COMPATIBLE EMBEDDER
// ============================================================================

// OpenAIEmbedder produces vectors through an OpenAI-compatible
// embeddings endpoint
type OpenAIEmbedder struct {
	config *config.EmbedderConfig
	client *http.Client
}

type openAIEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIEmbedder creates an embedder backed by an OpenAI-compatible API
func NewOpenAIEmbedder(cfg *config.EmbedderConfig) (*OpenAIEmbedder, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, NewEmbedderError("openai", "init", "invalid embedder config", err)
	}

	return &OpenAIEmbedder{
		config: cfg,
		client: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}, nil
}

// Embed converts text into an L2-normalized vector
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(openAIEmbedRequest{
		Model: e.config.Model,
		Input: []string{text},
	})
	if err != nil {
		return nil, NewEmbedderError("openai", "embed", "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		e.config.BaseURL+"/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, NewEmbedderError("openai", "embed", "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if e.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.config.APIKey)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, NewEmbedderError("openai", "embed", "failed to send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewEmbedderError("openai", "embed", "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp openAIEmbedResponse
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Error != nil {
			return nil, NewEmbedderError("openai", "embed",
				fmt.Sprintf("API error: %s (type: %s)", errResp.Error.Message, errResp.Error.Type), nil)
		}
		return nil, NewEmbedderError("openai", "embed",
			fmt.Sprintf("API returned status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var response openAIEmbedResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, NewEmbedderError("openai", "embed", "failed to decode response", err)
	}

	if len(response.Data) == 0 {
		return nil, NewEmbedderError("openai", "embed", "received empty embedding", nil)
	}

	return normalizeL2(response.Data[0].Embedding), nil
}

// Dimension returns the configured vector dimension
func (e *OpenAIEmbedder) Dimension() int {
	return e.config.Dimension
}

// ModelName returns the embedding model identifier
func (e *OpenAIEmbedder) ModelName() string {
	return e.config.Model
}

// Close releases provider resources
func (e *OpenAIEmbedder) Close() error {
	return nil
}

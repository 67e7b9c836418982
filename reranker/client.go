package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/internal/httpclient"
)

// ============================================================================
// CROSS-ENCODER CLIENT
// ============================================================================

// Client scores query/passage pairs against an HTTP cross-encoder
// service. A failed call is surfaced as an error to the caller; ranking
// never silently degrades to vector similarity.
type Client struct {
	config     *config.RerankerConfig
	httpClient *httpclient.Client
}

type rerankRequest struct {
	Model             string      `json:"model"`
	QueryPassagePairs [][2]string `json:"query_passage_pairs"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// NewClient creates a reranker client
func NewClient(cfg *config.RerankerConfig) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, NewRerankerError("init", "invalid reranker config", err)
	}

	return &Client{
		config: cfg,
		httpClient: httpclient.New(
			httpclient.WithTimeout(time.Duration(cfg.Timeout)*time.Second),
			httpclient.WithRetryStrategy(httpclient.NoRetryStrategy),
		),
	}, nil
}

// Score returns one cross-encoder score per passage, in passage order.
// Passages are truncated to the configured max input length and sent in
// batches of the configured size.
func (c *Client) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return []float64{}, nil
	}

	scores := make([]float64, 0, len(passages))
	for start := 0; start < len(passages); start += c.config.BatchSize {
		end := start + c.config.BatchSize
		if end > len(passages) {
			end = len(passages)
		}

		batch := make([][2]string, 0, end-start)
		for _, passage := range passages[start:end] {
			batch = append(batch, [2]string{query, truncateRunes(passage, c.config.MaxInputLength)})
		}

		batchScores, err := c.scoreBatch(ctx, batch)
		if err != nil {
			slog.Error("Rerank batch failed", "batch_start", start, "batch_size", len(batch), "error", err)
			return nil, err
		}
		scores = append(scores, batchScores...)
	}

	return scores, nil
}

// Ping verifies the service is reachable. Called at startup; with
// fail-fast configured a ping failure aborts the process.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.config.BaseURL+"/health", nil)
	if err != nil {
		return NewRerankerError("ping", "failed to create request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NewRerankerError("ping", "service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewRerankerError("ping", fmt.Sprintf("health check returned status %d", resp.StatusCode), nil)
	}

	return nil
}

// Model returns the configured cross-encoder model identifier
func (c *Client) Model() string {
	return c.config.Model
}

func (c *Client) scoreBatch(ctx context.Context, pairs [][2]string) ([]float64, error) {
	jsonData, err := json.Marshal(rerankRequest{
		Model:             c.config.Model,
		QueryPassagePairs: pairs,
	})
	if err != nil {
		return nil, NewRerankerError("score", "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		c.config.BaseURL+"/rerank", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, NewRerankerError("score", "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewRerankerError("score", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewRerankerError("score",
			fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var response rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, NewRerankerError("score", "failed to decode response", err)
	}

	if len(response.Scores) != len(pairs) {
		return nil, NewRerankerError("score",
			fmt.Sprintf("score count mismatch: got %d for %d pairs", len(response.Scores), len(pairs)), nil)
	}

	return response.Scores, nil
}

// truncateRunes cuts s to at most max runes
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

package llms

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/internal/httpclient"
)

// ============================================================================
// OPENAI-COMPATIBLE LLM PROVIDER
// ============================================================================

// OpenAIProvider implements LLMProvider for OpenAI-compatible chat APIs
// (api.openai.com, vLLM, llama.cpp server and similar gateways)
type OpenAIProvider struct {
	config *config.LLMConfig
	client *httpclient.Client
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
	Stream      bool            `json:"stream"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Error *openAIError `json:"error,omitempty"`
}

type openAIStreamResponse struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *openAIError `json:"error,omitempty"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// NewOpenAIProvider creates a new OpenAI-compatible provider from config
func NewOpenAIProvider(cfg *config.LLMConfig) (*OpenAIProvider, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &OpenAIProvider{
		config: cfg,
		client: httpclient.New(
			httpclient.WithTimeout(time.Duration(cfg.Timeout)*time.Second),
			httpclient.WithMaxRetries(3),
			httpclient.WithHeaderParser(httpclient.ParseRateLimitHeaders),
		),
	}, nil
}

// Generate implements LLMProvider.Generate
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.makeRequest(ctx, p.buildRequest(prompt, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var response openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", NewLLMError("openai", "generate", "failed to decode response", err)
	}

	if response.Error != nil {
		return "", NewLLMError("openai", "generate", response.Error.Message, nil)
	}
	if len(response.Choices) == 0 {
		return "", NewLLMError("openai", "generate", "no response choices returned", nil)
	}

	return response.Choices[0].Message.Content, nil
}

// GenerateStreaming implements LLMProvider.GenerateStreaming
func (p *OpenAIProvider) GenerateStreaming(ctx context.Context, prompt string) (<-chan string, error) {
	resp, err := p.makeRequest(ctx, p.buildRequest(prompt, true))
	if err != nil {
		return nil, err
	}

	ch := make(chan string, 64)

	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				return
			}

			var streamResp openAIStreamResponse
			if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
				slog.Error("OpenAI stream decode failed", "model", p.config.Model, "error", err)
				return
			}
			if streamResp.Error != nil {
				slog.Error("OpenAI stream error", "model", p.config.Model, "message", streamResp.Error.Message)
				return
			}

			if len(streamResp.Choices) > 0 {
				choice := streamResp.Choices[0]
				if choice.Delta.Content != "" {
					select {
					case ch <- choice.Delta.Content:
					case <-ctx.Done():
						return
					}
				}
				if choice.FinishReason != "" {
					return
				}
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			slog.Error("OpenAI stream read failed", "model", p.config.Model, "error", err)
		}
	}()

	return ch, nil
}

// ModelName implements LLMProvider.ModelName
func (p *OpenAIProvider) ModelName() string {
	return p.config.Model
}

// Close implements LLMProvider.Close
func (p *OpenAIProvider) Close() error {
	return nil
}

func (p *OpenAIProvider) buildRequest(prompt string, stream bool) openAIRequest {
	return openAIRequest{
		Model:       p.config.Model,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
		MaxTokens:   p.config.MaxTokens,
		Temperature: p.config.Temperature,
		Stream:      stream,
	}
}

func (p *OpenAIProvider) makeRequest(ctx context.Context, request openAIRequest) (*http.Response, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, NewLLMError("openai", "request", "failed to marshal request", err)
	}

	url := strings.TrimSuffix(p.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, NewLLMError("openai", "request", "failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, NewLLMError("openai", "request", "request failed", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, NewLLMError("openai", "request",
			fmt.Sprintf("API error (status %d): %s", resp.StatusCode, string(body)), nil)
	}

	return resp, nil
}

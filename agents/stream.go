package agents

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/vietbot-labs/ragcore/llms"
)

// ============================================================================
// ANSWER STREAMING
// ============================================================================

// streamAnswer pipes model output for prompt into a fresh channel. The
// opening chunks are held back until minAnswerRunes runes have arrived;
// a stream that fails up front or ends below that floor emits fallback
// instead, so callers always deliver a presentable answer.
func streamAnswer(ctx context.Context, llm llms.LLMProvider, prompt, fallback string) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		stream, err := llm.GenerateStreaming(ctx, prompt)
		if err != nil {
			slog.Warn("Answer generation failed, using fallback", "error", err)
			send(ctx, out, fallback)
			return
		}

		var held strings.Builder
		flushed := false
		for chunk := range stream {
			if flushed {
				if !send(ctx, out, chunk) {
					drain(stream)
					return
				}
				continue
			}

			held.WriteString(chunk)
			if len([]rune(strings.TrimSpace(held.String()))) >= minAnswerRunes {
				if !send(ctx, out, held.String()) {
					drain(stream)
					return
				}
				flushed = true
			}
		}

		if !flushed {
			send(ctx, out, fallback)
		}
	}()

	return out
}

// ChunkText splits text into word-sized chunks, each keeping its trailing
// whitespace, so concatenating the chunks reproduces text exactly.
func ChunkText(text string) []string {
	if text == "" {
		return nil
	}
	var chunks []string
	var current strings.Builder
	prevSpace := false
	for _, r := range text {
		isSpace := unicode.IsSpace(r)
		if prevSpace && !isSpace {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteRune(r)
		prevSpace = isSpace
	}
	return append(chunks, current.String())
}

// BufferedAnswer turns an already-complete answer into the chunk sequence
// a live model stream would have produced.
func BufferedAnswer(text string) <-chan string {
	chunks := ChunkText(text)
	out := make(chan string, len(chunks))
	for _, chunk := range chunks {
		out <- chunk
	}
	close(out)
	return out
}

// send writes one chunk unless the request is gone
func send(ctx context.Context, out chan<- string, chunk string) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// drain empties an abandoned model stream so its producer can exit
func drain(stream <-chan string) {
	for range stream {
	}
}

// CollectAnswer drains a streamed answer into its final text.
func CollectAnswer(chunks <-chan string) string {
	var b strings.Builder
	for chunk := range chunks {
		b.WriteString(chunk)
	}
	return b.String()
}

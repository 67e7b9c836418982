package agents

import (
	"context"

	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/search"
)

// fakeLLM replays a canned reply, in one piece or chunked
type fakeLLM struct {
	response string
	chunks   []string
	err      error
	prompts  []string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) GenerateStreaming(ctx context.Context, prompt string) (<-chan string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	chunks := f.chunks
	if chunks == nil && f.response != "" {
		chunks = []string{f.response}
	}
	out := make(chan string, len(chunks))
	for _, c := range chunks {
		out <- c
	}
	close(out)
	return out, nil
}

func (f *fakeLLM) ModelName() string { return "fake-llm" }
func (f *fakeLLM) Close() error      { return nil }

// fakeSearch serves canned hits and a fixed probe verdict
type fakeSearch struct {
	docs    []search.Document
	docsErr error
	faqs    []search.FAQ
	faqsErr error
	down    bool
	queries []string
}

func (f *fakeSearch) SearchDocuments(ctx context.Context, query string, topK int) ([]search.Document, error) {
	f.queries = append(f.queries, query)
	if f.docsErr != nil {
		return nil, f.docsErr
	}
	return f.docs, nil
}

func (f *fakeSearch) SearchFAQs(ctx context.Context, query string, topK int) ([]search.FAQ, error) {
	f.queries = append(f.queries, query)
	if f.faqsErr != nil {
		return nil, f.faqsErr
	}
	return f.faqs, nil
}

func (f *fakeSearch) CheckConnection(ctx context.Context) (bool, map[string]int) {
	return !f.down, nil
}

// fakeScorer returns its scores verbatim, zero-padded to the passage
// count
type fakeScorer struct {
	scores   []float64
	err      error
	calls    int
	passages []string
}

func (f *fakeScorer) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	f.calls++
	f.passages = append(f.passages, passages...)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, len(passages))
	copy(out, f.scores)
	return out, nil
}

func testFAQConfig() *config.FAQConfig {
	cfg := &config.FAQConfig{}
	cfg.SetDefaults()
	return cfg
}

func testSearchConfig() *config.SearchConfig {
	cfg := &config.SearchConfig{}
	cfg.SetDefaults()
	return cfg
}

func testGraderConfig() *config.GraderConfig {
	cfg := &config.GraderConfig{}
	cfg.SetDefaults()
	return cfg
}

func testResponderConfig() *config.ResponderConfig {
	cfg := &config.ResponderConfig{}
	cfg.SetDefaults()
	return cfg
}

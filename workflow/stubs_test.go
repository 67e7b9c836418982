package workflow

import (
	"context"
	"sync"

	"github.com/vietbot-labs/ragcore/agents"
	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/conversation"
	"github.com/vietbot-labs/ragcore/search"
)

// The analysis branches hit these fakes concurrently, so every recorded
// field sits behind the mutex.

type fakeLLM struct {
	mu            sync.Mutex
	respond       func(prompt string) (string, error)
	response      string
	chunks        []string
	streamErr     error
	prompts       []string
	streamPrompts []string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	respond := f.respond
	response := f.response
	f.mu.Unlock()

	if respond != nil {
		return respond(prompt)
	}
	return response, nil
}

func (f *fakeLLM) GenerateStreaming(ctx context.Context, prompt string) (<-chan string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamPrompts = append(f.streamPrompts, prompt)

	if f.streamErr != nil {
		return nil, f.streamErr
	}
	out := make(chan string, len(f.chunks))
	for _, chunk := range f.chunks {
		out <- chunk
	}
	close(out)
	return out, nil
}

func (f *fakeLLM) ModelName() string { return "fake-llm" }

func (f *fakeLLM) Close() error { return nil }

func (f *fakeLLM) generatePrompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func (f *fakeLLM) streamedPrompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.streamPrompts...)
}

type fakeSearch struct {
	mu      sync.Mutex
	docs    []search.Document
	docsErr error
	faqs    []search.FAQ
	faqsErr error
	down    bool
}

func (f *fakeSearch) SearchDocuments(ctx context.Context, query string, topK int) ([]search.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docsErr != nil {
		return nil, f.docsErr
	}
	return f.docs, nil
}

func (f *fakeSearch) SearchFAQs(ctx context.Context, query string, topK int) ([]search.FAQ, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.faqsErr != nil {
		return nil, f.faqsErr
	}
	return f.faqs, nil
}

func (f *fakeSearch) CheckConnection(ctx context.Context) (bool, map[string]int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.down, nil
}

type fakeScorer struct {
	mu     sync.Mutex
	scores []float64
	err    error
	calls  int
}

func (f *fakeScorer) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, len(passages))
	copy(out, f.scores)
	return out, nil
}

func (f *fakeScorer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// testBackends groups the external dependencies one engine under test
// shares across all nine agents.
type testBackends struct {
	llm    *fakeLLM
	search *fakeSearch
	scorer *fakeScorer
}

func newTestEngine(b testBackends) *Engine {
	faqCfg := &config.FAQConfig{}
	faqCfg.SetDefaults()
	searchCfg := &config.SearchConfig{}
	searchCfg.SetDefaults()
	graderCfg := &config.GraderConfig{}
	graderCfg.SetDefaults()
	responderCfg := &config.ResponderConfig{}
	responderCfg.SetDefaults()
	workflowCfg := &config.WorkflowConfig{}
	workflowCfg.SetDefaults()

	rewriter := conversation.NewRewriter(b.llm, workflowCfg.RewriteCacheSize)
	ag := Agents{
		Classifier:    agents.NewClassifier(b.llm, rewriter, b.search),
		FAQ:           agents.NewFAQResponder(b.llm, b.search, b.scorer, faqCfg, searchCfg.FAQTopK),
		Retriever:     agents.NewRetriever(b.search, searchCfg),
		Grader:        agents.NewGrader(b.scorer, graderCfg, searchCfg),
		Generator:     agents.NewGenerator(b.llm, nil),
		Chatter:       agents.NewChatter(b.llm, responderCfg),
		Reporter:      agents.NewReporter(b.search, responderCfg),
		Other:         agents.NewOther(b.llm, responderCfg),
		NotEnoughInfo: agents.NewNotEnoughInfo(b.llm, responderCfg),
	}
	return NewEngine(ag, workflowCfg)
}

func collectEvents(ch <-chan Event) []Event {
	var events []Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func eventTypes(events []Event) []string {
	types := make([]string, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

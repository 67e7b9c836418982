package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietbot-labs/ragcore/agents"
	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/conversation"
	"github.com/vietbot-labs/ragcore/databases"
	"github.com/vietbot-labs/ragcore/embedders"
	"github.com/vietbot-labs/ragcore/llms"
	"github.com/vietbot-labs/ragcore/reranker"
	"github.com/vietbot-labs/ragcore/search"
	"github.com/vietbot-labs/ragcore/utils"
	"github.com/vietbot-labs/ragcore/workflow"
)

// pipeline bundles everything one configuration builds: the workflow
// engine serving requests, the search service backing the health
// probes, and the provider set that needs closing on teardown.
type pipeline struct {
	engine    *workflow.Engine
	search    *search.Service
	providers *providerSet
}

// providerSet holds the registries a pipeline builds its providers
// into, keyed by the configured provider name. The status endpoint
// enumerates them and teardown closes them in one sweep.
type providerSet struct {
	llms      *llms.LLMRegistry
	embedders *embedders.EmbedderRegistry
	databases *databases.DatabaseRegistry
}

func newProviderSet() *providerSet {
	return &providerSet{
		llms:      llms.NewLLMRegistry(),
		embedders: embedders.NewEmbedderRegistry(),
		databases: databases.NewDatabaseRegistry(),
	}
}

// ProviderNames lists the registered provider names per kind.
func (ps *providerSet) ProviderNames() map[string][]string {
	return map[string][]string{
		"llms":      ps.llms.Names(),
		"embedders": ps.embedders.Names(),
		"databases": ps.databases.Names(),
	}
}

// Close shuts down every registered provider.
func (ps *providerSet) Close() {
	for _, provider := range ps.llms.List() {
		provider.Close()
	}
	for _, provider := range ps.embedders.List() {
		provider.Close()
	}
	for _, provider := range ps.databases.List() {
		provider.Close()
	}
}

// buildPipeline constructs every client and agent from the config. The
// reranker is pinged up front; with fail_fast set an unreachable
// reranker aborts the build, otherwise the service starts and graded
// paths fail per request until it recovers.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline, error) {
	providers := newProviderSet()

	llm, err := providers.llms.CreateLLMFromConfig(cfg.LLM.Provider, &cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm provider: %w", err)
	}

	embedder, err := providers.embedders.CreateEmbedderFromConfig(cfg.Embedder.Provider, &cfg.Embedder)
	if err != nil {
		providers.Close()
		return nil, fmt.Errorf("failed to create embedder provider: %w", err)
	}

	store, err := providers.databases.CreateDatabaseFromConfig(cfg.VectorStore.Provider, &cfg.VectorStore)
	if err != nil {
		providers.Close()
		return nil, fmt.Errorf("failed to create vector store provider: %w", err)
	}

	scorer, err := reranker.NewClient(&cfg.Reranker)
	if err != nil {
		providers.Close()
		return nil, fmt.Errorf("failed to create reranker client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := scorer.Ping(pingCtx); err != nil {
		if cfg.Reranker.IsFailFast() {
			providers.Close()
			return nil, fmt.Errorf("reranker unreachable (fail_fast enabled): %w", err)
		}
		slog.Warn("Reranker unreachable at startup, graded answers will fail until it recovers",
			"base_url", cfg.Reranker.BaseURL, "error", err)
	}

	searchSvc := search.NewService(embedder, store, &cfg.VectorStore)
	rewriter := conversation.NewRewriter(llm, cfg.Workflow.RewriteCacheSize)

	// A nil counter switches the generator to character-based budget
	// estimates, so a missing encoding never blocks startup.
	counter, err := utils.NewTokenCounter(cfg.LLM.Model)
	if err != nil {
		slog.Warn("Token counter unavailable, history budgets fall back to size estimates",
			"model", cfg.LLM.Model, "error", err)
		counter = nil
	}

	engine := workflow.NewEngine(workflow.Agents{
		Classifier:    agents.NewClassifier(llm, rewriter, searchSvc),
		FAQ:           agents.NewFAQResponder(llm, searchSvc, scorer, &cfg.FAQ, cfg.Search.FAQTopK),
		Retriever:     agents.NewRetriever(searchSvc, &cfg.Search),
		Grader:        agents.NewGrader(scorer, &cfg.Grader, &cfg.Search),
		Generator:     agents.NewGenerator(llm, counter),
		Chatter:       agents.NewChatter(llm, &cfg.Responder),
		Reporter:      agents.NewReporter(searchSvc, &cfg.Responder),
		Other:         agents.NewOther(llm, &cfg.Responder),
		NotEnoughInfo: agents.NewNotEnoughInfo(llm, &cfg.Responder),
	}, &cfg.Workflow)

	return &pipeline{
		engine:    engine,
		search:    searchSvc,
		providers: providers,
	}, nil
}

// Close releases the pipeline's clients.
func (p *pipeline) Close() {
	if p.providers != nil {
		p.providers.Close()
	}
}

// loadConfig loads the configuration file, or builds the config from
// environment variables and defaults when no path is given.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if path != "" {
		slog.Info("Loaded configuration", "path", path)
	} else {
		slog.Info("No config file given, using environment and defaults")
	}
	return cfg, nil
}

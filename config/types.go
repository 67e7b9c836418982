// Package config provides configuration types and utilities for the RAG service.
// This file contains the per-section configuration types.
package config

import (
	"fmt"
	"strings"
)

// ============================================================================
// SERVER CONFIGURATION
// ============================================================================

// ServerConfig contains the HTTP server settings
type ServerConfig struct {
	Host           string   `yaml:"host"`            // Bind address
	Port           int      `yaml:"port"`            // Listen port
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS origins
}

// Validate implements ConfigInterface.Validate for ServerConfig
func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// SetDefaults implements ConfigInterface.SetDefaults for ServerConfig
func (c *ServerConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8501
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
}

// Address returns the host:port pair the server binds to
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ============================================================================
// LOGGER CONFIGURATION
// ============================================================================

// LoggerConfig contains logging settings
type LoggerConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text" or "json"
	File   string `yaml:"file"`   // Log file path (empty = stderr)
}

// Validate implements ConfigInterface.Validate for LoggerConfig
func (c *LoggerConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Level)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Format)
	}
	return nil
}

// SetDefaults implements ConfigInterface.SetDefaults for LoggerConfig
func (c *LoggerConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
}

// ============================================================================
// LLM CONFIGURATION
// ============================================================================

// LLMConfig contains the text-generation model settings
type LLMConfig struct {
	Provider    string  `yaml:"provider"`    // "ollama" or "openai"
	BaseURL     string  `yaml:"base_url"`    // Service endpoint
	Model       string  `yaml:"model"`       // Model name
	APIKey      string  `yaml:"api_key"`     // API key (openai only)
	Temperature float64 `yaml:"temperature"` // Sampling temperature
	MaxTokens   int     `yaml:"max_tokens"`  // Generation cap
	Timeout     int     `yaml:"timeout"`     // Request timeout in seconds
}

// Validate implements ConfigInterface.Validate for LLMConfig
func (c *LLMConfig) Validate() error {
	switch c.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("invalid llm provider: %s", c.Provider)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Provider == "openai" && c.APIKey == "" {
		return fmt.Errorf("api_key is required for openai")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface.SetDefaults for LLMConfig
func (c *LLMConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "ollama"
	}
	if c.BaseURL == "" {
		switch c.Provider {
		case "openai":
			c.BaseURL = "https://api.openai.com/v1"
		default:
			c.BaseURL = "http://localhost:11434"
		}
	}
	if c.Model == "" {
		c.Model = "gpt-oss:20b"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.3
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 2048
	}
	if c.Timeout == 0 {
		c.Timeout = 60
	}
}

// ============================================================================
// EMBEDDER CONFIGURATION
// ============================================================================

// EmbedderConfig contains the embedding model settings
type EmbedderConfig struct {
	Provider  string `yaml:"provider"`  // "ollama", "openai" or "hash"
	BaseURL   string `yaml:"base_url"`  // Service endpoint
	Model     string `yaml:"model"`     // Embedding model name
	APIKey    string `yaml:"api_key"`   // Bearer token for openai-compatible gateways
	Dimension int    `yaml:"dimension"` // Declared vector dimension
	Timeout   int    `yaml:"timeout"`   // Request timeout in seconds
}

// Validate implements ConfigInterface.Validate for EmbedderConfig
func (c *EmbedderConfig) Validate() error {
	switch c.Provider {
	case "ollama", "openai", "hash":
	default:
		return fmt.Errorf("invalid embedder provider: %s", c.Provider)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("dimension must be positive")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface.SetDefaults for EmbedderConfig
func (c *EmbedderConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "ollama"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434"
	}
	if c.Model == "" {
		c.Model = "keepitreal/vietnamese-sbert"
	}
	if c.Dimension == 0 {
		c.Dimension = 1024
	}
	if c.Timeout == 0 {
		c.Timeout = 30
	}
}

// ============================================================================
// VECTOR STORE CONFIGURATION
// ============================================================================

// VectorStoreConfig contains the vector database settings
type VectorStoreConfig struct {
	Provider           string `yaml:"provider"`            // "milvus", "qdrant", "chromem"
	Host               string `yaml:"host"`                // Database host
	Port               int    `yaml:"port"`                // Database port
	DocumentCollection string `yaml:"document_collection"` // Document embeddings collection
	FAQCollection      string `yaml:"faq_collection"`      // FAQ embeddings collection
	NProbe             int    `yaml:"nprobe"`              // IVF probe count for searches
	ProbeTimeout       int    `yaml:"probe_timeout"`       // Liveness probe timeout in seconds
	PersistPath        string `yaml:"persist_path"`        // On-disk path (chromem only)
}

// Validate implements ConfigInterface.Validate for VectorStoreConfig
func (c *VectorStoreConfig) Validate() error {
	switch c.Provider {
	case "milvus", "qdrant", "chromem":
	default:
		return fmt.Errorf("invalid vector store provider: %s", c.Provider)
	}
	if c.Provider != "chromem" {
		if c.Host == "" {
			return fmt.Errorf("host is required")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("invalid port: %d", c.Port)
		}
	}
	if c.DocumentCollection == "" {
		return fmt.Errorf("document_collection is required")
	}
	if c.FAQCollection == "" {
		return fmt.Errorf("faq_collection is required")
	}
	if c.NProbe <= 0 {
		return fmt.Errorf("nprobe must be positive")
	}
	return nil
}

// SetDefaults implements ConfigInterface.SetDefaults for VectorStoreConfig
func (c *VectorStoreConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "milvus"
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		switch c.Provider {
		case "qdrant":
			c.Port = 6334
		default:
			c.Port = 19530
		}
	}
	if c.DocumentCollection == "" {
		c.DocumentCollection = "document_embeddings"
	}
	if c.FAQCollection == "" {
		c.FAQCollection = "faq_embeddings"
	}
	if c.NProbe == 0 {
		c.NProbe = 16
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = 2
	}
}

// ============================================================================
// RERANKER CONFIGURATION
// ============================================================================

// RerankerConfig contains the cross-encoder reranker service settings
type RerankerConfig struct {
	BaseURL        string `yaml:"base_url"`         // Reranker service endpoint
	Model          string `yaml:"model"`            // Cross-encoder model identifier
	MaxInputLength int    `yaml:"max_input_length"` // Passage truncation length
	BatchSize      int    `yaml:"batch_size"`       // Pairs per request
	FailFast       *bool  `yaml:"fail_fast"`        // Abort startup when unreachable
	Timeout        int    `yaml:"timeout"`          // Request timeout in seconds
}

// Validate implements ConfigInterface.Validate for RerankerConfig
func (c *RerankerConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.MaxInputLength <= 0 {
		return fmt.Errorf("max_input_length must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface.SetDefaults for RerankerConfig
func (c *RerankerConfig) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080"
	}
	if c.Model == "" {
		c.Model = "namdp-ptit/ViRanker"
	}
	if c.MaxInputLength == 0 {
		c.MaxInputLength = 512
	}
	if c.BatchSize == 0 {
		c.BatchSize = 32
	}
	if c.FailFast == nil {
		c.FailFast = BoolPtr(true)
	}
	if c.Timeout == 0 {
		c.Timeout = 30
	}
}

// IsFailFast reports whether a failed startup ping aborts the process
func (c *RerankerConfig) IsFailFast() bool {
	return c.FailFast == nil || *c.FailFast
}

// ============================================================================
// SEARCH CONFIGURATION
// ============================================================================

// SearchConfig contains document retrieval settings
type SearchConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"` // Minimum cosine similarity
	TopK                int     `yaml:"top_k"`                // Document candidates per search
	FAQTopK             int     `yaml:"faq_top_k"`            // FAQ candidates per search
}

// Validate implements ConfigInterface.Validate for SearchConfig
func (c *SearchConfig) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be between 0 and 1")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive")
	}
	if c.FAQTopK <= 0 {
		return fmt.Errorf("faq_top_k must be positive")
	}
	return nil
}

// SetDefaults implements ConfigInterface.SetDefaults for SearchConfig
func (c *SearchConfig) SetDefaults() {
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = 0.2
	}
	if c.TopK == 0 {
		c.TopK = 15
	}
	if c.FAQTopK == 0 {
		c.FAQTopK = 10
	}
}

// ============================================================================
// FAQ CONFIGURATION
// ============================================================================

// FAQConfig contains FAQ matching thresholds and reranking weights
type FAQConfig struct {
	VectorThreshold          float64 `yaml:"vector_threshold"`           // Wide-net vector search floor
	RerankThreshold          float64 `yaml:"rerank_threshold"`           // Reranked acceptance floor
	DirectAnswerThreshold    float64 `yaml:"direct_answer_threshold"`    // Score allowing the stored answer as-is
	ForceSimilarityThreshold float64 `yaml:"force_similarity_threshold"` // Vector score overriding a weak rerank
	QuestionWeight           float64 `yaml:"question_weight"`            // Weight for the question-only variant
	QAWeight                 float64 `yaml:"qa_weight"`                  // Weight for the question+answer variant
	AnswerWeight             float64 `yaml:"answer_weight"`              // Weight for the answer-only variant
	ConsistencyThreshold     float64 `yaml:"consistency_threshold"`      // Per-variant floor for the bonus
	ConsistencyBonus         float64 `yaml:"consistency_bonus"`          // Multiplier when all variants agree
}

// Validate implements ConfigInterface.Validate for FAQConfig
func (c *FAQConfig) Validate() error {
	for name, v := range map[string]float64{
		"vector_threshold":           c.VectorThreshold,
		"rerank_threshold":           c.RerankThreshold,
		"direct_answer_threshold":    c.DirectAnswerThreshold,
		"force_similarity_threshold": c.ForceSimilarityThreshold,
		"consistency_threshold":      c.ConsistencyThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if c.QuestionWeight+c.QAWeight+c.AnswerWeight <= 0 {
		return fmt.Errorf("reranking weights must sum to a positive value")
	}
	if c.ConsistencyBonus < 1 {
		return fmt.Errorf("consistency_bonus must be at least 1")
	}
	return nil
}

// SetDefaults implements ConfigInterface.SetDefaults for FAQConfig
func (c *FAQConfig) SetDefaults() {
	if c.VectorThreshold == 0 {
		c.VectorThreshold = 0.5
	}
	if c.RerankThreshold == 0 {
		c.RerankThreshold = 0.6
	}
	if c.DirectAnswerThreshold == 0 {
		c.DirectAnswerThreshold = 0.75
	}
	if c.ForceSimilarityThreshold == 0 {
		c.ForceSimilarityThreshold = 0.85
	}
	if c.QuestionWeight == 0 && c.QAWeight == 0 && c.AnswerWeight == 0 {
		c.QuestionWeight = 0.5
		c.QAWeight = 0.3
		c.AnswerWeight = 0.2
	}
	if c.ConsistencyThreshold == 0 {
		c.ConsistencyThreshold = 0.6
	}
	if c.ConsistencyBonus == 0 {
		c.ConsistencyBonus = 1.1
	}
}

// ============================================================================
// GRADER CONFIGURATION
// ============================================================================

// GraderConfig contains document grading thresholds
type GraderConfig struct {
	RerankThreshold float64 `yaml:"rerank_threshold"` // Cross-encoder floor for qualified documents
}

// Validate implements ConfigInterface.Validate for GraderConfig
func (c *GraderConfig) Validate() error {
	if c.RerankThreshold < 0 || c.RerankThreshold > 1 {
		return fmt.Errorf("rerank_threshold must be between 0 and 1")
	}
	return nil
}

// SetDefaults implements ConfigInterface.SetDefaults for GraderConfig
func (c *GraderConfig) SetDefaults() {
	if c.RerankThreshold == 0 {
		c.RerankThreshold = 0.6
	}
}

// ============================================================================
// WORKFLOW CONFIGURATION
// ============================================================================

// WorkflowConfig contains fan-out and timeout settings
type WorkflowConfig struct {
	Workers           int `yaml:"workers"`            // Parallel fan-out worker limit
	ClassifierTimeout int `yaml:"classifier_timeout"` // Classifier branch timeout in seconds
	FAQTimeout        int `yaml:"faq_timeout"`        // FAQ branch timeout in seconds
	RetrieverTimeout  int `yaml:"retriever_timeout"`  // Retriever branch timeout in seconds
	RewriteCacheSize  int `yaml:"rewrite_cache_size"` // Follow-up rewrite LRU capacity
}

// Validate implements ConfigInterface.Validate for WorkflowConfig
func (c *WorkflowConfig) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.ClassifierTimeout <= 0 || c.FAQTimeout <= 0 || c.RetrieverTimeout <= 0 {
		return fmt.Errorf("branch timeouts must be positive")
	}
	if c.RewriteCacheSize <= 0 {
		return fmt.Errorf("rewrite_cache_size must be positive")
	}
	return nil
}

// SetDefaults implements ConfigInterface.SetDefaults for WorkflowConfig
func (c *WorkflowConfig) SetDefaults() {
	if c.Workers == 0 {
		c.Workers = 3
	}
	if c.ClassifierTimeout == 0 {
		c.ClassifierTimeout = 20
	}
	if c.FAQTimeout == 0 {
		c.FAQTimeout = 10
	}
	if c.RetrieverTimeout == 0 {
		c.RetrieverTimeout = 10
	}
	if c.RewriteCacheSize == 0 {
		c.RewriteCacheSize = 10
	}
}

// ============================================================================
// RESPONDER CONFIGURATION
// ============================================================================

// ResponderConfig contains fixed strings surfaced in terminal answers
type ResponderConfig struct {
	SupportPhone string `yaml:"support_phone"` // Contact line used by support-facing agents
}

// Validate implements ConfigInterface.Validate for ResponderConfig
func (c *ResponderConfig) Validate() error {
	return nil
}

// SetDefaults implements ConfigInterface.SetDefaults for ResponderConfig
func (c *ResponderConfig) SetDefaults() {
	if c.SupportPhone == "" {
		c.SupportPhone = "Phòng vận hành 0904540490 - Phòng kinh doanh:0914616081"
	}
}

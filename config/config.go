// Package config provides configuration types and utilities for the RAG service.
// This file contains the main unified configuration entry point.
package config

import (
	"fmt"
)

// ============================================================================
// MAIN UNIFIED CONFIGURATION
// ============================================================================

// Config represents the complete service configuration
// Every section can be set from YAML, from environment variables, or left to
// its defaults; environment variables win over the file
type Config struct {
	Server      ServerConfig      `yaml:"server,omitempty"`
	Logger      LoggerConfig      `yaml:"logger,omitempty"`
	LLM         LLMConfig         `yaml:"llm,omitempty"`
	Embedder    EmbedderConfig    `yaml:"embedder,omitempty"`
	VectorStore VectorStoreConfig `yaml:"vectorstore,omitempty"`
	Reranker    RerankerConfig    `yaml:"reranker,omitempty"`
	Search      SearchConfig      `yaml:"search,omitempty"`
	FAQ         FAQConfig         `yaml:"faq,omitempty"`
	Grader      GraderConfig      `yaml:"grader,omitempty"`
	Workflow    WorkflowConfig    `yaml:"workflow,omitempty"`
	Responder   ResponderConfig   `yaml:"responder,omitempty"`
}

// sections returns every configuration section in a stable order
func (c *Config) sections() []struct {
	name string
	cfg  ConfigInterface
} {
	return []struct {
		name string
		cfg  ConfigInterface
	}{
		{"server", &c.Server},
		{"logger", &c.Logger},
		{"llm", &c.LLM},
		{"embedder", &c.Embedder},
		{"vectorstore", &c.VectorStore},
		{"reranker", &c.Reranker},
		{"search", &c.Search},
		{"faq", &c.FAQ},
		{"grader", &c.Grader},
		{"workflow", &c.Workflow},
		{"responder", &c.Responder},
	}
}

// Validate implements ConfigInterface.Validate for Config
func (c *Config) Validate() error {
	for _, s := range c.sections() {
		if err := s.cfg.Validate(); err != nil {
			return fmt.Errorf("%s config validation failed: %w", s.name, err)
		}
	}
	return nil
}

// SetDefaults implements ConfigInterface.SetDefaults for Config
func (c *Config) SetDefaults() {
	for _, s := range c.sections() {
		s.cfg.SetDefaults()
	}
}

// ============================================================================
// CONFIGURATION LOADING
// ============================================================================

// LoadConfig loads the complete configuration from a YAML file
// This is the main entry point for configuration loading; an empty path
// builds the configuration from environment variables and defaults alone
func LoadConfig(filePath string) (*Config, error) {
	var config Config
	if err := loadConfig(filePath, &config); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &config, nil
}

// LoadConfigFromString loads configuration from a YAML string
func LoadConfigFromString(yamlContent string) (*Config, error) {
	var config Config
	if err := loadConfigFromString(yamlContent, &config); err != nil {
		return nil, fmt.Errorf("failed to load config from string: %w", err)
	}
	return &config, nil
}

// Package config provides configuration types and utilities for the RAG service.
// This file contains environment variable handling: ${VAR} expansion inside
// YAML values and the plain-variable overlay that mirrors every section.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ============================================================================
// ENVIRONMENT VARIABLE EXPANSION
// ============================================================================

var (
	// Pre-compiled patterns, processed from most to least specific
	envVarPatterns = struct {
		withDefault *regexp.Regexp // ${VAR:-default}
		braced      *regexp.Regexp // ${VAR}
		simple      *regexp.Regexp // $VAR
	}{
		withDefault: regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*):-(.*?)\}`),
		braced:      regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`),
		simple:      regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`),
	}
)

// expandEnvVars expands environment variables in a string
// Supports formats: ${VAR:-default}, ${VAR}, $VAR
func expandEnvVars(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}

	s = envVarPatterns.withDefault.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPatterns.withDefault.FindStringSubmatch(match)
		if len(parts) == 3 {
			if val := os.Getenv(parts[1]); val != "" {
				return val
			}
			return parts[2]
		}
		return match
	})

	s = envVarPatterns.braced.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPatterns.braced.FindStringSubmatch(match)
		if len(parts) == 2 {
			return os.Getenv(parts[1])
		}
		return match
	})

	s = envVarPatterns.simple.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPatterns.simple.FindStringSubmatch(match)
		if len(parts) == 2 {
			return os.Getenv(parts[1])
		}
		return match
	})

	return s
}

// parseValue attempts to parse a string value to its appropriate type
// Returns the parsed value or the original string if parsing fails
func parseValue(value string) interface{} {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}

	if intVal, err := strconv.Atoi(value); err == nil {
		return intVal
	}

	if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
		return floatVal
	}

	return value
}

// ExpandEnvVarsInData recursively expands environment variables in structured
// data and preserves original data types through parsing
func ExpandEnvVarsInData(data interface{}) interface{} {
	switch v := data.(type) {
	case string:
		expanded := expandEnvVars(v)
		if expanded != v {
			return parseValue(expanded)
		}
		return expanded

	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			result[key] = ExpandEnvVarsInData(value)
		}
		return result

	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = ExpandEnvVarsInData(item)
		}
		return result

	default:
		return v
	}
}

// LoadEnvFiles loads environment variables from .env files
// Loads in priority order: .env.local (highest) -> .env -> system environment
func LoadEnvFiles() error {
	envFiles := []string{".env.local", ".env"}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	return nil
}

// ============================================================================
// ENVIRONMENT VARIABLE OVERLAY
// ============================================================================

// ApplyEnv overlays process environment variables onto the configuration
// Variables win over file values; defaults fill whatever remains unset
func (c *Config) ApplyEnv() error {
	var errs []string

	setString := func(key string, dst *string) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			*dst = val
		}
	}
	setInt := func(key string, dst *int) {
		val, ok := os.LookupEnv(key)
		if !ok || val == "" {
			return
		}
		parsed, err := strconv.Atoi(val)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return
		}
		*dst = parsed
	}
	setFloat := func(key string, dst *float64) {
		val, ok := os.LookupEnv(key)
		if !ok || val == "" {
			return
		}
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return
		}
		*dst = parsed
	}
	setBool := func(key string, dst **bool) {
		val, ok := os.LookupEnv(key)
		if !ok || val == "" {
			return
		}
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return
		}
		*dst = BoolPtr(parsed)
	}

	setString("SERVER_HOST", &c.Server.Host)
	setInt("SERVER_PORT", &c.Server.Port)

	setString("LOG_LEVEL", &c.Logger.Level)
	setString("LOG_FORMAT", &c.Logger.Format)
	setString("LOG_FILE", &c.Logger.File)

	setString("LLM_PROVIDER", &c.LLM.Provider)
	setString("LLM_BASE_URL", &c.LLM.BaseURL)
	setString("LLM_MODEL", &c.LLM.Model)
	setString("LLM_API_KEY", &c.LLM.APIKey)

	setString("EMBEDDING_PROVIDER", &c.Embedder.Provider)
	setString("EMBEDDING_BASE_URL", &c.Embedder.BaseURL)
	setString("EMBEDDING_MODEL", &c.Embedder.Model)
	setString("EMBEDDING_API_KEY", &c.Embedder.APIKey)
	setInt("EMBEDDING_DIM", &c.Embedder.Dimension)

	setString("VECTOR_DB_PROVIDER", &c.VectorStore.Provider)
	setString("MILVUS_HOST", &c.VectorStore.Host)
	setInt("MILVUS_PORT", &c.VectorStore.Port)
	setString("DOCUMENT_COLLECTION", &c.VectorStore.DocumentCollection)
	setString("FAQ_COLLECTION", &c.VectorStore.FAQCollection)

	setString("RERANKER_URL", &c.Reranker.BaseURL)
	setString("RERANKER_MODEL", &c.Reranker.Model)
	setInt("RERANKER_BATCH_SIZE", &c.Reranker.BatchSize)
	setBool("RERANKER_FAIL_FAST", &c.Reranker.FailFast)

	setFloat("SIMILARITY_THRESHOLD", &c.Search.SimilarityThreshold)
	setInt("TOP_K", &c.Search.TopK)
	setInt("FAQ_TOP_K", &c.Search.FAQTopK)

	setFloat("FAQ_VECTOR_THRESHOLD", &c.FAQ.VectorThreshold)
	setFloat("FAQ_RERANK_THRESHOLD", &c.FAQ.RerankThreshold)
	setFloat("FAQ_DIRECT_ANSWER_THRESHOLD", &c.FAQ.DirectAnswerThreshold)
	setFloat("FAQ_FORCE_SIMILARITY_THRESHOLD", &c.FAQ.ForceSimilarityThreshold)

	setFloat("DOCUMENT_RERANK_THRESHOLD", &c.Grader.RerankThreshold)

	setString("SUPPORT_PHONE", &c.Responder.SupportPhone)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment overrides: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Package config provides configuration types and utilities for the RAG service.
// This file contains the loading pipeline: read, parse, expand, decode,
// overlay environment variables, apply defaults, validate.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ============================================================================
// LOADING PIPELINE
// ============================================================================

// loadConfig reads and processes configuration from a file
// An empty path skips the file stage entirely
func loadConfig(filePath string, config *Config) error {
	var raw map[string]interface{}

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		raw, err = parseBytes(data)
		if err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return processConfig(raw, config)
}

// loadConfigFromString processes configuration from a YAML string
func loadConfigFromString(yamlContent string, config *Config) error {
	raw, err := parseBytes([]byte(yamlContent))
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return processConfig(raw, config)
}

// processConfig runs the shared pipeline over an already-parsed map
func processConfig(raw map[string]interface{}, config *Config) error {
	if raw != nil {
		expanded, ok := ExpandEnvVarsInData(raw).(map[string]interface{})
		if !ok {
			return fmt.Errorf("unexpected config structure after expansion")
		}
		if err := decodeConfig(expanded, config); err != nil {
			return fmt.Errorf("failed to decode config: %w", err)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return err
	}

	config.SetDefaults()

	if err := config.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// parseBytes parses raw bytes into a map
// Supports YAML (primary) and JSON (fallback)
func parseBytes(data []byte) (map[string]interface{}, error) {
	var result map[string]interface{}

	// YAML is a superset of JSON, so try it first
	if err := yaml.Unmarshal(data, &result); err == nil {
		return result, nil
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse as YAML or JSON: %w", err)
	}

	return result, nil
}

// decodeConfig decodes a map into a Config struct using mapstructure
func decodeConfig(input map[string]interface{}, output *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("failed to decode: %w", err)
	}

	return nil
}

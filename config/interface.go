// Package config provides configuration types and utilities for the RAG service.
// This file defines the core interface that all configuration sections implement.
package config

// ConfigInterface defines the interface that all configuration sections implement
// This provides a consistent way to validate and set defaults for any section
type ConfigInterface interface {
	// Validate checks if the configuration is valid and returns an error if not
	Validate() error

	// SetDefaults sets default values for any unset fields
	SetDefaults()
}

// BoolPtr returns a pointer to the given bool, for optional boolean fields
func BoolPtr(b bool) *bool {
	return &b
}

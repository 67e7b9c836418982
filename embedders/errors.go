package embedders

import (
	"fmt"
	"time"
)

// ============================================================================
// EMBEDDER ERRORS
// ============================================================================

// EmbedderError represents an error from an embedding provider
type EmbedderError struct {
	Provider  string
	Operation string
	Message   string
	Err       error
	Timestamp time.Time
}

func (e *EmbedderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Provider, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Provider, e.Operation, e.Message)
}

func (e *EmbedderError) Unwrap() error {
	return e.Err
}

// NewEmbedderError creates a new embedder error
func NewEmbedderError(provider, operation, message string, err error) *EmbedderError {
	return &EmbedderError{
		Provider:  provider,
		Operation: operation,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
}

package llms

import (
	"fmt"
	"time"
)

// ============================================================================
// LLM ERRORS - STANDARDIZED ERROR TYPES
// ============================================================================

// LLMError represents errors in LLM provider operations
type LLMError struct {
	Provider  string
	Operation string
	Message   string
	Err       error
	Timestamp time.Time
}

func (e *LLMError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Provider, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Provider, e.Operation, e.Message)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// NewLLMError creates a new LLM error
func NewLLMError(provider, operation, message string, err error) *LLMError {
	return &LLMError{
		Provider:  provider,
		Operation: operation,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
}

package reranker

import (
	"fmt"
	"time"
)

// ============================================================================
// RERANKER ERRORS
// ============================================================================

// RerankerError represents an error from the cross-encoder service
type RerankerError struct {
	Operation string
	Message   string
	Err       error
	Timestamp time.Time
}

func (e *RerankerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[reranker:%s] %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("[reranker:%s] %s", e.Operation, e.Message)
}

func (e *RerankerError) Unwrap() error {
	return e.Err
}

// NewRerankerError creates a new reranker error
func NewRerankerError(operation, message string, err error) *RerankerError {
	return &RerankerError{
		Operation: operation,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
}

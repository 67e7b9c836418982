package databases

import (
	"fmt"
	"time"
)

// ============================================================================
// DATABASE ERRORS
// ============================================================================

// DatabaseError represents an error from a vector store provider
type DatabaseError struct {
	Provider  string
	Operation string
	Message   string
	Err       error
	Timestamp time.Time
}

func (e *DatabaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Provider, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Provider, e.Operation, e.Message)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// NewDatabaseError creates a new database error
func NewDatabaseError(provider, operation, message string, err error) *DatabaseError {
	return &DatabaseError{
		Provider:  provider,
		Operation: operation,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
}

package models

import "time"

// ErrorType classifies a pipeline failure for the retry coordinator.
type ErrorType string

const (
	ErrorTypeStructure  ErrorType = "structure"  // Parse errors, graph invariant violations
	ErrorTypeCapability ErrorType = "capability" // Unknown or unavailable node types
	ErrorTypeRateLimit  ErrorType = "rate_limit" // External call rejected for rate reasons
	ErrorTypeTimeout    ErrorType = "timeout"    // External call deadline exceeded
	ErrorTypeUnknown    ErrorType = "unknown"
)

// MaxAttempts is the retry ceiling per operation. Once reached, the
// coordinator returns a terminal explanation instead of retrying.
const MaxAttempts = 3

// ErrorAttempt records one failed attempt at an operation.
type ErrorAttempt struct {
	Number    int       `json:"number"`
	ErrorType ErrorType `json:"error_type"`
	Message   string    `json:"message"`
	Strategy  string    `json:"strategy,omitempty"` // Resolution applied before the next attempt
	At        time.Time `json:"at"`
}

// ErrorContext is the append-only retry ledger for one operation within a
// session. It is discarded on session reset.
type ErrorContext struct {
	Operation     string         `json:"operation"`
	AttemptNumber int            `json:"attempt_number"`
	Previous      []ErrorAttempt `json:"previous_attempts"`
}

// NewErrorContext starts a ledger for the named operation.
func NewErrorContext(operation string) *ErrorContext {
	return &ErrorContext{Operation: operation}
}

// RecordAttempt appends a failed attempt and bumps the attempt number.
func (e *ErrorContext) RecordAttempt(errType ErrorType, message, strategy string) {
	e.AttemptNumber++
	e.Previous = append(e.Previous, ErrorAttempt{
		Number:    e.AttemptNumber,
		ErrorType: errType,
		Message:   message,
		Strategy:  strategy,
		At:        time.Now().UTC(),
	})
}

// Exhausted reports whether the retry budget is spent.
func (e *ErrorContext) Exhausted() bool {
	return e.AttemptNumber >= MaxAttempts
}

// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrSessionNotFound indicates a conversation session was not found by the given identifier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrSessionAlreadyExists indicates a session with the same identifier already exists.
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// SessionError wraps session-related errors with additional context.
type SessionError struct {
	Op        string // Operation being performed (e.g., "SessionByID", "SaveSession")
	SessionID string
	Err       error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s operation failed for session %s: %v", e.Op, e.SessionID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for session errors.
func (e *SessionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewSessionError creates a new session error with context.
func NewSessionError(op, sessionID string, err error) *SessionError {
	return &SessionError{Op: op, SessionID: sessionID, Err: err}
}

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op         string
	WorkflowID string
	Err        error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for workflow errors.
func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{Op: op, WorkflowID: workflowID, Err: err}
}

// IsSessionNotFound checks if an error indicates a session was not found.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

package persistence

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionErrorWrapping(t *testing.T) {
	err := NewSessionError("SessionByID", "sess-1", ErrSessionNotFound)

	assert.True(t, IsSessionNotFound(err))
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.Contains(t, err.Error(), "sess-1")
	assert.Contains(t, err.Error(), "SessionByID")
}

func TestWorkflowErrorWrapping(t *testing.T) {
	err := NewWorkflowError("WorkflowByID", "wf-1", ErrWorkflowNotFound)

	assert.True(t, IsWorkflowNotFound(err))
	assert.False(t, IsSessionNotFound(err))
	assert.Contains(t, err.Error(), "wf-1")
}

func TestNotFoundHelpersRejectOtherErrors(t *testing.T) {
	assert.False(t, IsSessionNotFound(errors.New("boom")))
	assert.False(t, IsWorkflowNotFound(nil))
}

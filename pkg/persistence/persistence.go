// Package persistence provides the storage abstraction for conversation
// sessions and generated workflows.
package persistence

import (
	"context"

	"github.com/intelogroup/clixen/pkg/models"
)

// SessionRepository stores conversation sessions.
type SessionRepository interface {
	SaveSession(ctx context.Context, session *models.ConversationSession) error
	SessionByID(ctx context.Context, id string) (*models.ConversationSession, error)
	SessionsByUser(ctx context.Context, userID string) ([]*models.ConversationSession, error)
	DeleteSession(ctx context.Context, id string) error
}

// WorkflowRepository stores generated workflow definitions.
type WorkflowRepository interface {
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
}

// Persistence is the full storage surface a backend must provide.
type Persistence interface {
	SessionRepository
	WorkflowRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

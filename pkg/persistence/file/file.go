// Package file provides file-based persistence for sessions and workflows.
// Each entity is one JSON document under the root directory.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/persistence"
)

// Persistence implements persistence.Persistence using the file system.
type Persistence struct {
	root         string
	sessionRepo  *SessionRepository
	workflowRepo *WorkflowRepository
}

// NewPersistence creates a file persistence layer rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		sessionRepo:  NewSessionRepository(cleanRoot),
		workflowRepo: NewWorkflowRepository(cleanRoot),
	}
}

var _ persistence.Persistence = (*Persistence)(nil)

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) SaveSession(ctx context.Context, session *models.ConversationSession) error {
	return fp.sessionRepo.Save(ctx, session)
}

func (fp *Persistence) SessionByID(ctx context.Context, id string) (*models.ConversationSession, error) {
	return fp.sessionRepo.GetByID(ctx, id)
}

func (fp *Persistence) SessionsByUser(ctx context.Context, userID string) ([]*models.ConversationSession, error) {
	return fp.sessionRepo.GetByUser(ctx, userID)
}

func (fp *Persistence) DeleteSession(ctx context.Context, id string) error {
	return fp.sessionRepo.Delete(ctx, id)
}

func (fp *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	return fp.workflowRepo.Save(ctx, workflow)
}

func (fp *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	return fp.workflowRepo.GetByID(ctx, id)
}

func (fp *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	return fp.workflowRepo.GetAll(ctx)
}

func (fp *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	return fp.workflowRepo.Delete(ctx, id)
}

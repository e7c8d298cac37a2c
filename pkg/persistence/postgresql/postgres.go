// Package postgresql provides PostgreSQL persistence for sessions and workflows.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // database/sql driver

	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/persistence"
	"github.com/intelogroup/clixen/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	sessionRepo  *SessionRepository
	workflowRepo *WorkflowRepository
}

var _ persistence.Persistence = (*Persistence)(nil)

// NewPersistence connects, runs migrations and returns the persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:           database,
		logger:       logger,
		sessionRepo:  NewSessionRepository(database, logger),
		workflowRepo: NewWorkflowRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) SaveSession(ctx context.Context, session *models.ConversationSession) error {
	return p.sessionRepo.Save(ctx, session)
}

func (p *Persistence) SessionByID(ctx context.Context, id string) (*models.ConversationSession, error) {
	return p.sessionRepo.GetByID(ctx, id)
}

func (p *Persistence) SessionsByUser(ctx context.Context, userID string) ([]*models.ConversationSession, error) {
	return p.sessionRepo.GetByUser(ctx, userID)
}

func (p *Persistence) DeleteSession(ctx context.Context, id string) error {
	return p.sessionRepo.Delete(ctx, id)
}

func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	return p.workflowRepo.Save(ctx, workflow)
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	return p.workflowRepo.GetByID(ctx, id)
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	return p.workflowRepo.GetAll(ctx)
}

func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	return p.workflowRepo.Delete(ctx, id)
}

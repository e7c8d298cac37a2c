package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/persistence"
)

// WorkflowRepository handles workflow rows with nodes and connections in
// JSONB columns.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

func (wr *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	nodes, err := json.Marshal(workflow.Nodes)
	if err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	connections, err := json.Marshal(workflow.Connections)
	if err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	metadata, err := json.Marshal(workflow.Metadata)
	if err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	query := `
		INSERT INTO workflows (id, session_id, name, description, status, owner, nodes, connections, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name        = EXCLUDED.name,
			description = EXCLUDED.description,
			status      = EXCLUDED.status,
			nodes       = EXCLUDED.nodes,
			connections = EXCLUDED.connections,
			metadata    = EXCLUDED.metadata,
			updated_at  = EXCLUDED.updated_at
	`

	_, err = wr.db.ExecContext(ctx, query,
		workflow.ID, workflow.SessionID, workflow.Name, workflow.Description,
		string(workflow.Status), workflow.Owner, nodes, connections, metadata,
		workflow.CreatedAt, workflow.UpdatedAt)
	if err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	return nil
}

func (wr *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `
		SELECT id, session_id, name, description, status, owner, nodes, connections, metadata, created_at, updated_at
		FROM workflows
		WHERE id = $1
	`

	workflow, err := scanWorkflow(wr.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, persistence.NewWorkflowError("WorkflowByID", id, err)
	}

	return workflow, nil
}

func (wr *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	query := `
		SELECT id, session_id, name, description, status, owner, nodes, connections, metadata, created_at, updated_at
		FROM workflows
		ORDER BY created_at ASC
	`

	rows, err := wr.db.QueryContext(ctx, query)
	if err != nil {
		return nil, persistence.NewWorkflowError("Workflows", "", err)
	}
	defer rows.Close()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, persistence.NewWorkflowError("Workflows", "", err)
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewWorkflowError("Workflows", "", err)
	}

	return workflows, nil
}

func (wr *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := wr.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return persistence.NewWorkflowError("DeleteWorkflow", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("DeleteWorkflow", id, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow    models.Workflow
		status      string
		nodes       []byte
		connections []byte
		metadata    []byte
	)

	err := row.Scan(&workflow.ID, &workflow.SessionID, &workflow.Name, &workflow.Description,
		&status, &workflow.Owner, &nodes, &connections, &metadata,
		&workflow.CreatedAt, &workflow.UpdatedAt)
	if err != nil {
		return nil, err
	}

	workflow.Status = models.WorkflowStatus(status)

	if err := json.Unmarshal(nodes, &workflow.Nodes); err != nil {
		return nil, fmt.Errorf("decoding nodes: %w", err)
	}

	if err := json.Unmarshal(connections, &workflow.Connections); err != nil {
		return nil, fmt.Errorf("decoding connections: %w", err)
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &workflow.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
	}

	return &workflow, nil
}

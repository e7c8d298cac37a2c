package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/persistence"
)

// WorkflowRepository stores each workflow as one JSON file under
// <root>/workflows.
type WorkflowRepository struct {
	root string
}

func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (wr *WorkflowRepository) dir() string {
	return filepath.Join(wr.root, "workflows")
}

func (wr *WorkflowRepository) path(id string) string {
	return filepath.Join(wr.dir(), id+".json")
}

func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	if workflow.ID == "" {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, fmt.Errorf("workflow id is empty"))
	}

	if err := os.MkdirAll(wr.dir(), 0o755); err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	if err := os.WriteFile(wr.path(workflow.ID), data, 0o600); err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	return nil
}

func (wr *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	data, err := os.ReadFile(wr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewWorkflowError("WorkflowByID", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, persistence.NewWorkflowError("WorkflowByID", id, err)
	}

	return &workflow, nil
}

func (wr *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	root := os.DirFS(wr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, persistence.NewWorkflowError("Workflows", "", err)
	}

	workflows := make([]*models.Workflow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		workflow, err := wr.GetByID(ctx, strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(wr.path(id))
	if os.IsNotExist(err) {
		return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return persistence.NewWorkflowError("DeleteWorkflow", id, err)
	}

	return nil
}

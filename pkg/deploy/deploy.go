// Package deploy hands validated workflows to the execution engine.
package deploy

import (
	"context"
	"errors"

	"github.com/intelogroup/clixen/pkg/models"
)

// ErrEngineUnavailable indicates the execution engine could not be reached.
var ErrEngineUnavailable = errors.New("execution engine unavailable")

// ErrDeploymentRejected indicates the engine refused the workflow.
var ErrDeploymentRejected = errors.New("deployment rejected")

// Receipt is the engine's acknowledgement of a deployment.
type Receipt struct {
	DeploymentID string `json:"deployment_id"`
	Endpoint     string `json:"endpoint,omitempty"` // Webhook URL for webhook-triggered workflows
}

// Deployer ships a validated workflow to an execution engine.
type Deployer interface {
	Deploy(ctx context.Context, workflow *models.Workflow) (*Receipt, error)
}

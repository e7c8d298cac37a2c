package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/intelogroup/clixen/pkg/models"
)

const deployTimeout = 30 * time.Second

// EngineClient deploys workflows over the execution engine's HTTP API.
type EngineClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewEngineClient(baseURL, apiKey string, logger *slog.Logger) *EngineClient {
	return &EngineClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: deployTimeout},
		logger:     logger,
	}
}

var _ Deployer = (*EngineClient)(nil)

func (c *EngineClient) Deploy(ctx context.Context, workflow *models.Workflow) (*Receipt, error) {
	payload, err := json.Marshal(workflow)
	if err != nil {
		return nil, fmt.Errorf("encoding workflow %s: %w", workflow.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/workflows", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building deploy request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading deploy response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: engine returned %d", ErrEngineUnavailable, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: engine returned %d: %s", ErrDeploymentRejected, resp.StatusCode, string(body))
	}

	var receipt Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return nil, fmt.Errorf("decoding deploy response: %w", err)
	}

	c.logger.InfoContext(ctx, "Deployed workflow",
		"workflow_id", workflow.ID,
		"deployment_id", receipt.DeploymentID)

	return &receipt, nil
}

// NopDeployer accepts every workflow without shipping it anywhere. Used in
// development and tests.
type NopDeployer struct{}

func (NopDeployer) Deploy(_ context.Context, workflow *models.Workflow) (*Receipt, error) {
	return &Receipt{DeploymentID: "nop-" + workflow.ID}, nil
}

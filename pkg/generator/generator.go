// Package generator transforms a frozen, feasible specification into a
// deployable workflow graph and enforces its structural invariants.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/intelogroup/clixen/pkg/llm"
	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/registry"
)

// GenerationError marks a structural failure raised before the candidate is
// handed to validation.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}

	return "generation failed: " + e.Reason
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err is a structural generation failure.
func IsGenerationError(err error) bool {
	var genErr *GenerationError

	return errors.As(err, &genErr)
}

// Generator builds workflow graphs from specifications.
type Generator struct {
	client   llm.Client
	registry *registry.Registry
	logger   *slog.Logger
	model    string
}

func NewGenerator(client llm.Client, reg *registry.Registry, logger *slog.Logger, model string) *Generator {
	return &Generator{
		client:   client,
		registry: reg,
		logger:   logger,
		model:    model,
	}
}

const generationSystemPrompt = `You design workflow graphs for an automation engine.
Respond with a single JSON object, no prose:
{
  "name": "...",
  "description": "...",
  "nodes": [{"id": "...", "type": "...", "category": "trigger|action", "name": "...", "parameters": {}}],
  "connections": [{"source": "node-id", "target": "node-id"}]
}
Rules: node ids must be unique; every connection must reference existing node ids;
exactly one trigger node with no incoming connections; use only the node types listed in the prompt.`

type generationPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Nodes       []struct {
		ID         string         `json:"id"`
		Type       string         `json:"type"`
		Category   string         `json:"category"`
		Name       string         `json:"name"`
		Parameters map[string]any `json:"parameters"`
	} `json:"nodes"`
	Connections []struct {
		Source string `json:"source"`
		Target string `json:"target"`
	} `json:"connections"`
}

// Generate produces a candidate workflow for the specification. Structural
// invariants are enforced here: a violation is a generation failure, never a
// validation warning.
func (g *Generator) Generate(ctx context.Context, spec *models.Specification) (*models.Workflow, error) {
	resp, err := g.client.Complete(ctx, llm.CompletionRequest{
		System:      generationSystemPrompt,
		Prompt:      g.buildGenerationPrompt(spec),
		Model:       g.model,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("generation completion failed: %w", err)
	}

	var payload generationPayload
	if err := llm.ExtractJSON(resp.Text, &payload); err != nil {
		return nil, &GenerationError{Reason: "unparseable model output", Err: err}
	}

	workflow := payloadToWorkflow(&payload, spec)

	if err := CheckGraph(workflow); err != nil {
		return nil, err
	}

	annotateSchedulePreview(workflow)

	g.logger.InfoContext(ctx, "Generated workflow candidate",
		"workflow_id", workflow.ID,
		"nodes", len(workflow.Nodes),
		"connections", len(workflow.Connections))

	return workflow, nil
}

func (g *Generator) buildGenerationPrompt(spec *models.Specification) string {
	var b strings.Builder

	b.WriteString("Available node types: ")
	b.WriteString(strings.Join(g.registry.Types(), ", "))
	b.WriteString("\n\nSpecification:\n")
	fmt.Fprintf(&b, "Trigger: %s - %s\n", spec.Trigger.Type, spec.Trigger.Description)

	for i, action := range spec.Actions {
		fmt.Fprintf(&b, "Step %d: %s - %s\n", i+1, action.Type, action.Description)
	}

	if len(spec.Integrations) > 0 {
		b.WriteString("Integrations: ")
		b.WriteString(strings.Join(spec.Integrations, ", "))
		b.WriteString("\n")
	}

	return b.String()
}

func payloadToWorkflow(payload *generationPayload, spec *models.Specification) *models.Workflow {
	now := time.Now().UTC()

	workflow := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        payload.Name,
		Description: payload.Description,
		Status:      models.WorkflowStatusDraft,
		Metadata:    map[string]any{"complexity": string(spec.Complexity)},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if workflow.Name == "" {
		workflow.Name = fallbackName(spec)
	}

	for i, node := range payload.Nodes {
		workflow.Nodes = append(workflow.Nodes, &models.WorkflowNode{
			ID:         node.ID,
			Type:       node.Type,
			Category:   models.CategoryType(node.Category),
			Name:       node.Name,
			Parameters: node.Parameters,
			PositionX:  i * 200,
			PositionY:  100,
		})
	}

	for _, conn := range payload.Connections {
		workflow.Connections = append(workflow.Connections, &models.Connection{
			ID:     uuid.New().String(),
			Source: conn.Source,
			Target: conn.Target,
		})
	}

	return workflow
}

func fallbackName(spec *models.Specification) string {
	if len(spec.Actions) > 0 && spec.Actions[0].Description != "" {
		return spec.Actions[0].Description
	}

	return "Generated workflow"
}

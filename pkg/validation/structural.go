package validation

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/intelogroup/clixen/pkg/models"
)

// workflowSchema is the shape every candidate must satisfy before any
// graph-level reasoning happens.
const workflowSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "name", "nodes", "connections"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"status": {"type": "string", "enum": ["draft", "valid", "deployed"]},
		"nodes": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["id", "type", "category"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"type": {"type": "string", "minLength": 1},
					"category": {"type": "string", "enum": ["action", "trigger"]},
					"parameters": {"type": "object"}
				}
			}
		},
		"connections": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["source", "target"],
				"properties": {
					"source": {"type": "string", "minLength": 1},
					"target": {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`

type structuralValidator struct {
	schema *gojsonschema.Schema
}

func newStructuralValidator() (*structuralValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(workflowSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling workflow schema: %w", err)
	}

	return &structuralValidator{schema: schema}, nil
}

// check validates the serialized workflow against the schema and then
// re-verifies the graph invariants. Every finding here blocks: a workflow
// with a broken shape or an unreachable graph cannot be deployed at all.
func (v *structuralValidator) check(workflow *models.Workflow) checkResult {
	result := checkResult{Score: 100}

	serialized, err := json.Marshal(workflow)
	if err != nil {
		result.Score = 0
		result.Issues = append(result.Issues, blockingIssue("structural", fmt.Sprintf("workflow is not serializable: %v", err)))

		return result
	}

	schemaResult, err := v.schema.Validate(gojsonschema.NewBytesLoader(serialized))
	if err != nil {
		result.Score = 0
		result.Issues = append(result.Issues, blockingIssue("structural", fmt.Sprintf("schema validation failed: %v", err)))

		return result
	}

	for _, schemaErr := range schemaResult.Errors() {
		result.Score -= 25
		result.Issues = append(result.Issues, blockingIssue("structural", schemaErr.String()))
	}

	result = v.checkGraph(workflow, result)
	result.Score = clampScore(result.Score)

	return result
}

func (v *structuralValidator) checkGraph(workflow *models.Workflow, result checkResult) checkResult {
	seen := make(map[string]bool, len(workflow.Nodes))
	for _, node := range workflow.Nodes {
		if node.ID == "" {
			continue
		}

		if seen[node.ID] {
			result.Score -= 25
			result.Issues = append(result.Issues, blockingIssue("structural", fmt.Sprintf("duplicate node id %q", node.ID)))
		}

		seen[node.ID] = true
	}

	for _, conn := range workflow.Connections {
		if !seen[conn.Source] {
			result.Score -= 25
			result.Issues = append(result.Issues, blockingIssue("structural", fmt.Sprintf("connection references unknown source node %q", conn.Source)))
		}

		if !seen[conn.Target] {
			result.Score -= 25
			result.Issues = append(result.Issues, blockingIssue("structural", fmt.Sprintf("connection references unknown target node %q", conn.Target)))
		}
	}

	if len(workflow.Nodes) > 0 && len(workflow.EntryPoints()) == 0 {
		result.Score -= 25
		result.Issues = append(result.Issues, blockingIssue("structural", "workflow has no entry point, every node has an incoming connection"))
	}

	return result
}

func blockingIssue(category, message string) models.ValidationIssue {
	return models.ValidationIssue{
		Severity: models.SeverityCritical,
		Category: category,
		Message:  message,
		Blocking: true,
	}
}

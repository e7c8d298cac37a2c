package generator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/intelogroup/clixen/pkg/models"
	"github.com/robfig/cron/v3"
)

// schedulePreviewCount is how many upcoming activations are attached to a
// schedule trigger's metadata.
const schedulePreviewCount = 3

// BuildTemplate constructs the minimal workflow for a specification without
// any model involvement: one trigger node followed by a linear chain of
// action nodes. It is the last-resort generation strategy and always
// satisfies the structural invariants.
func BuildTemplate(spec *models.Specification) *models.Workflow {
	now := time.Now().UTC()

	workflow := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        fallbackName(spec),
		Description: "Generated from a simplified template",
		Status:      models.WorkflowStatusDraft,
		Metadata:    map[string]any{"template": true},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	trigger := &models.WorkflowNode{
		ID:         "trigger-1",
		Type:       triggerNodeType(spec),
		Category:   models.CategoryTypeTrigger,
		Name:       "Start",
		Parameters: spec.Trigger.Parameters,
		PositionY:  100,
	}
	workflow.Nodes = append(workflow.Nodes, trigger)

	previous := trigger.ID

	for i, action := range spec.Actions {
		node := &models.WorkflowNode{
			ID:         fmt.Sprintf("action-%d", i+1),
			Type:       action.Type,
			Category:   models.CategoryTypeAction,
			Name:       action.Description,
			Parameters: action.Parameters,
			PositionX:  (i + 1) * 200,
			PositionY:  100,
		}
		if node.Name == "" {
			node.Name = action.Type
		}

		workflow.Nodes = append(workflow.Nodes, node)
		workflow.Connections = append(workflow.Connections, &models.Connection{
			ID:     uuid.New().String(),
			Source: previous,
			Target: node.ID,
		})
		previous = node.ID
	}

	if len(spec.Actions) == 0 {
		// A trigger alone is not a runnable workflow; add a pass-through so
		// the graph has an action to execute.
		noop := &models.WorkflowNode{
			ID:        "action-1",
			Type:      "noop",
			Category:  models.CategoryTypeAction,
			Name:      "Pass through",
			PositionX: 200,
			PositionY: 100,
		}
		workflow.Nodes = append(workflow.Nodes, noop)
		workflow.Connections = append(workflow.Connections, &models.Connection{
			ID:     uuid.New().String(),
			Source: trigger.ID,
			Target: noop.ID,
		})
	}

	annotateSchedulePreview(workflow)

	return workflow
}

func triggerNodeType(spec *models.Specification) string {
	switch spec.Trigger.Type {
	case "schedule":
		return models.NodeTypeTriggerSchedule
	case "webhook":
		return models.NodeTypeTriggerWebhook
	default:
		return models.NodeTypeTriggerManual
	}
}

// annotateSchedulePreview validates cron expressions on schedule triggers and
// attaches the next few activation times. An invalid expression is replaced
// with a note rather than failing generation; validation scores it later.
func annotateSchedulePreview(workflow *models.Workflow) {
	for _, node := range workflow.Nodes {
		if node.Type != models.NodeTypeTriggerSchedule {
			continue
		}

		expr, _ := node.Parameters["cron"].(string)
		if expr == "" {
			continue
		}

		schedule, err := cron.ParseStandard(expr)
		if err != nil {
			if node.Parameters == nil {
				node.Parameters = map[string]any{}
			}

			node.Parameters["cron_error"] = err.Error()

			continue
		}

		next := time.Now().UTC()
		preview := make([]string, 0, schedulePreviewCount)

		for i := 0; i < schedulePreviewCount; i++ {
			next = schedule.Next(next)
			preview = append(preview, next.Format(time.RFC3339))
		}

		if node.Parameters == nil {
			node.Parameters = map[string]any{}
		}

		node.Parameters["next_activations"] = preview
	}
}

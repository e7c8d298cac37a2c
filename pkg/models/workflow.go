package models

import "time"

// WorkflowStatus represents the lifecycle state of a generated workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft    WorkflowStatus = "draft"    // Generated, not yet validated
	WorkflowStatusValid    WorkflowStatus = "valid"    // Passed aggregate validation
	WorkflowStatusDeployed WorkflowStatus = "deployed" // Handed to the execution engine
)

// CategoryType represents the category of a workflow node.
type CategoryType string

const (
	CategoryTypeAction  CategoryType = "action"  // Regular action nodes (http, slack, transform, etc.)
	CategoryTypeTrigger CategoryType = "trigger" // Trigger nodes (webhook, schedule, manual)
)

// Built-in trigger node types.
const (
	NodeTypeTriggerWebhook  = "trigger:webhook"
	NodeTypeTriggerSchedule = "trigger:schedule"
	NodeTypeTriggerManual   = "trigger:manual"
)

// WorkflowNode is one node in a generated workflow graph.
type WorkflowNode struct {
	ID         string         `json:"id"         validate:"required"`
	Type       string         `json:"type"       validate:"required"`
	Category   CategoryType   `json:"category"   validate:"required,oneof=action trigger"`
	Name       string         `json:"name"       validate:"required,min=1"`
	Parameters map[string]any `json:"parameters"`
	PositionX  int            `json:"position_x"`
	PositionY  int            `json:"position_y"`
}

func (n *WorkflowNode) IsActionNode() bool {
	return n.Category == CategoryTypeAction
}

func (n *WorkflowNode) IsTriggerNode() bool {
	return n.Category == CategoryTypeTrigger
}

// Connection is a directed edge between two nodes, referenced by node ID.
type Connection struct {
	ID     string `json:"id"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// Workflow is the deployable artifact produced by the generator: a node graph
// with a connection map and enough metadata for the execution engine.
type Workflow struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id,omitempty"`
	Name        string          `json:"name"        validate:"required,min=3"`
	Description string          `json:"description"`
	Status      WorkflowStatus  `json:"status"`
	Nodes       []*WorkflowNode `json:"nodes"`
	Connections []*Connection   `json:"connections"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	Owner       string          `json:"owner,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NodeByID returns the node with the given ID, or nil.
func (w *Workflow) NodeByID(id string) *WorkflowNode {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// TriggerNodes returns all trigger-category nodes in the workflow.
func (w *Workflow) TriggerNodes() []*WorkflowNode {
	var triggers []*WorkflowNode

	for _, node := range w.Nodes {
		if node.IsTriggerNode() {
			triggers = append(triggers, node)
		}
	}

	return triggers
}

// EntryPoints returns nodes with no incoming connections.
func (w *Workflow) EntryPoints() []*WorkflowNode {
	incoming := make(map[string]int, len(w.Nodes))
	for _, conn := range w.Connections {
		incoming[conn.Target]++
	}

	var entries []*WorkflowNode

	for _, node := range w.Nodes {
		if incoming[node.ID] == 0 {
			entries = append(entries, node)
		}
	}

	return entries
}

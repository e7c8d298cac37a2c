package generator

import (
	"fmt"

	"github.com/intelogroup/clixen/pkg/models"
)

// CheckGraph enforces the structural invariants every candidate must satisfy
// before validation sees it: unique node identifiers, connection endpoints
// that resolve to existing nodes, and at least one entry point with no
// incoming edges.
func CheckGraph(workflow *models.Workflow) error {
	if len(workflow.Nodes) == 0 {
		return &GenerationError{Reason: "workflow has no nodes"}
	}

	seen := make(map[string]bool, len(workflow.Nodes))

	for _, node := range workflow.Nodes {
		if node.ID == "" {
			return &GenerationError{Reason: "node with empty identifier"}
		}

		if seen[node.ID] {
			return &GenerationError{Reason: fmt.Sprintf("duplicate node identifier %q", node.ID)}
		}

		seen[node.ID] = true
	}

	for _, conn := range workflow.Connections {
		if !seen[conn.Source] {
			return &GenerationError{Reason: fmt.Sprintf("connection source %q does not resolve to a node", conn.Source)}
		}

		if !seen[conn.Target] {
			return &GenerationError{Reason: fmt.Sprintf("connection target %q does not resolve to a node", conn.Target)}
		}
	}

	if len(workflow.EntryPoints()) == 0 {
		return &GenerationError{Reason: "no entry point: every node has incoming connections"}
	}

	return nil
}

// RegenerateNodeIDs rewrites duplicate node identifiers in place, fixing up
// connection references. Used by the retry coordinator as an auto-correction.
func RegenerateNodeIDs(workflow *models.Workflow, newID func() string) {
	seen := make(map[string]bool, len(workflow.Nodes))

	for _, node := range workflow.Nodes {
		if !seen[node.ID] && node.ID != "" {
			seen[node.ID] = true

			continue
		}

		old := node.ID
		node.ID = newID()
		seen[node.ID] = true

		// Only rewrite edges that still dangle; edges referencing the first
		// holder of the old identifier stay put.
		for _, conn := range workflow.Connections {
			if conn.Source == old && workflow.NodeByID(conn.Source) == nil {
				conn.Source = node.ID
			}

			if conn.Target == old && workflow.NodeByID(conn.Target) == nil {
				conn.Target = node.ID
			}
		}
	}
}

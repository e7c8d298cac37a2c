package validation

import (
	"fmt"
	"strings"

	"github.com/intelogroup/clixen/pkg/models"
)

// Per-node execution cost estimates, in abstract units. External calls
// dominate; pure transforms are nearly free.
var nodeCosts = map[string]int{
	"http_request":  10,
	"slack":         10,
	"email":         8,
	"google_sheets": 12,
	"transform":     1,
	"filter":        1,
	"noop":          0,
}

const (
	defaultNodeCost = 5
	costBudget      = 80
	maxChainDepth   = 8
	maxFanOut       = 3
)

// checkPerformance applies a heuristic cost model. Findings here degrade the
// score and surface as warnings; none of them block deployment on their own.
func checkPerformance(workflow *models.Workflow) checkResult {
	result := checkResult{Score: 100}

	total := 0
	for _, node := range workflow.Nodes {
		if node.Category == models.CategoryTypeTrigger {
			continue
		}

		cost, ok := nodeCosts[node.Type]
		if !ok {
			cost = defaultNodeCost
		}

		total += cost
	}

	if total > costBudget {
		result.Score -= 20
		result.Warnings = append(result.Warnings, models.ValidationWarning{
			Category: "performance",
			Impact:   "high execution cost",
			Message:  fmt.Sprintf("estimated cost %d exceeds budget %d, expect slow runs", total, costBudget),
		})
	}

	outgoing := make(map[string]int)
	for _, conn := range workflow.Connections {
		outgoing[conn.Source]++
	}

	for nodeID, count := range outgoing {
		if count > maxFanOut {
			result.Score -= 10
			result.Warnings = append(result.Warnings, models.ValidationWarning{
				Category: "performance",
				Impact:   "wide fan-out",
				Message:  fmt.Sprintf("node %q fans out to %d branches, consider batching", nodeID, count),
			})
		}
	}

	if depth := longestChain(workflow); depth > maxChainDepth {
		result.Score -= 15
		result.Warnings = append(result.Warnings, models.ValidationWarning{
			Category: "performance",
			Impact:   "deep sequential chain",
			Message:  fmt.Sprintf("longest chain has %d steps, latency accumulates per step", depth),
		})
	}

	for _, node := range workflow.Nodes {
		if node.Type != "http_request" {
			continue
		}

		if url, ok := node.Parameters["url"].(string); ok && strings.HasPrefix(url, "http://") {
			result.Score -= 5
			result.Warnings = append(result.Warnings, models.ValidationWarning{
				Category: "performance",
				Impact:   "no connection reuse",
				Message:  fmt.Sprintf("node %q calls a plain http endpoint, prefer https", node.ID),
			})
		}
	}

	result.Score = clampScore(result.Score)

	return result
}

// longestChain walks the connection graph from each entry point and returns
// the longest path length in nodes. Cycles are cut by the visited set; the
// structural check already rejects graphs without an entry point.
func longestChain(workflow *models.Workflow) int {
	adjacency := make(map[string][]string)
	for _, conn := range workflow.Connections {
		adjacency[conn.Source] = append(adjacency[conn.Source], conn.Target)
	}

	longest := 0
	for _, entry := range workflow.EntryPoints() {
		visited := make(map[string]bool)
		if depth := chainDepth(entry.ID, adjacency, visited); depth > longest {
			longest = depth
		}
	}

	return longest
}

func chainDepth(nodeID string, adjacency map[string][]string, visited map[string]bool) int {
	if visited[nodeID] {
		return 0
	}

	visited[nodeID] = true
	defer delete(visited, nodeID)

	deepest := 0
	for _, next := range adjacency[nodeID] {
		if depth := chainDepth(next, adjacency, visited); depth > deepest {
			deepest = depth
		}
	}

	return deepest + 1
}

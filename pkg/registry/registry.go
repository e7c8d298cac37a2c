// Package registry catalogs the node types the execution engine can deploy.
// The feasibility assessor consults it for capability availability and
// substitutes; the generator consults it to emit only deployable node types.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/intelogroup/clixen/pkg/models"
)

// Definition describes one deployable node type.
type Definition struct {
	Type        string             `json:"type"` // e.g. "slack", "trigger:schedule"
	Name        string             `json:"name"`
	Category    models.CategoryType `json:"category"`
	Description string             `json:"description"`
	Integration string             `json:"integration,omitempty"` // External service this node talks to
	Schema      *models.JSONSchema `json:"schema,omitempty"`
	Substitutes []string           `json:"substitutes,omitempty"` // Types usable when this one is unavailable
	Available   bool               `json:"available"`
}

// Registry is a concurrency-safe catalog of node type definitions.
type Registry struct {
	logger *slog.Logger

	mu          sync.RWMutex
	definitions map[string]Definition
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:      logger,
		definitions: make(map[string]Definition),
	}
}

// Register adds or replaces a node type definition.
func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.definitions[def.Type] = def
}

// Lookup returns the definition for a node type.
func (r *Registry) Lookup(nodeType string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.definitions[nodeType]

	return def, ok
}

// Available reports whether a node type exists and is currently deployable.
func (r *Registry) Available(nodeType string) bool {
	def, ok := r.Lookup(nodeType)

	return ok && def.Available
}

// Substitute returns the first available substitute for a node type, if any.
func (r *Registry) Substitute(nodeType string) (Definition, bool) {
	def, ok := r.Lookup(nodeType)
	if !ok {
		return Definition{}, false
	}

	for _, alt := range def.Substitutes {
		if altDef, found := r.Lookup(alt); found && altDef.Available {
			return altDef, true
		}
	}

	return Definition{}, false
}

// ByIntegration returns all definitions referencing the given integration.
func (r *Registry) ByIntegration(integration string) []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []Definition

	for _, def := range r.definitions {
		if def.Integration == integration {
			matches = append(matches, def)
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Type < matches[j].Type })

	return matches
}

// Types returns all registered node types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.definitions))
	for nodeType := range r.definitions {
		types = append(types, nodeType)
	}

	sort.Strings(types)

	return types
}

// HealthCheck reports whether the catalog is usable.
func (r *Registry) HealthCheck() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.definitions) == 0 {
		return "Node catalog is empty", false
	}

	return fmt.Sprintf("Node catalog ready with %d types", len(r.definitions)), true
}

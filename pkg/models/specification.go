// Package models defines the core domain models for conversational workflow generation.
package models

// Complexity is the derived effort estimate for a specification.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// TriggerTypeUnknown marks a trigger whose kind has not been resolved yet.
const TriggerTypeUnknown = "unknown"

// TriggerSpec describes how the requested automation starts.
type TriggerSpec struct {
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Resolved reports whether the trigger kind has been identified.
func (t TriggerSpec) Resolved() bool {
	return t.Type != "" && t.Type != TriggerTypeUnknown
}

// ActionSpec describes one step the requested automation should execute.
type ActionSpec struct {
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Specification is the accumulating structured representation of user intent.
// It is built up turn by turn through field-level merges and is never mutated
// once the owning session enters the generating phase.
type Specification struct {
	Trigger      TriggerSpec  `json:"trigger"`
	Actions      []ActionSpec `json:"actions"`
	Integrations []string     `json:"integrations"`
	Complexity   Complexity   `json:"complexity"`
	Feasible     bool         `json:"feasible"`
	Issues       []string     `json:"issues,omitempty"`
}

// NewSpecification returns an empty specification with an unresolved trigger.
func NewSpecification() *Specification {
	return &Specification{
		Trigger:    TriggerSpec{Type: TriggerTypeUnknown},
		Complexity: ComplexitySimple,
		Feasible:   true,
	}
}

// IsComplete reports whether enough information exists to assess feasibility:
// the trigger is resolved, at least one action with type and description
// exists, and at least one integration is referenced.
func (s *Specification) IsComplete() bool {
	if s == nil || !s.Trigger.Resolved() {
		return false
	}

	if len(s.Actions) == 0 || len(s.Integrations) == 0 {
		return false
	}

	for _, action := range s.Actions {
		if action.Type == "" || action.Description == "" {
			return false
		}
	}

	return true
}

// HasAction reports whether an action of the given type is already present.
func (s *Specification) HasAction(actionType string) bool {
	for _, action := range s.Actions {
		if action.Type == actionType {
			return true
		}
	}

	return false
}

// HasIntegration reports whether the given integration is already referenced.
func (s *Specification) HasIntegration(name string) bool {
	for _, integration := range s.Integrations {
		if integration == name {
			return true
		}
	}

	return false
}

// Clone returns a deep copy. Merging works on copies so that callers holding a
// reference to an earlier revision never observe later mutations.
func (s *Specification) Clone() *Specification {
	if s == nil {
		return nil
	}

	clone := &Specification{
		Trigger: TriggerSpec{
			Type:        s.Trigger.Type,
			Description: s.Trigger.Description,
			Parameters:  cloneMap(s.Trigger.Parameters),
		},
		Complexity: s.Complexity,
		Feasible:   s.Feasible,
	}

	if s.Actions != nil {
		clone.Actions = make([]ActionSpec, len(s.Actions))
		for i, action := range s.Actions {
			clone.Actions[i] = ActionSpec{
				Type:        action.Type,
				Description: action.Description,
				Parameters:  cloneMap(action.Parameters),
			}
		}
	}

	if s.Integrations != nil {
		clone.Integrations = append([]string{}, s.Integrations...)
	}

	if s.Issues != nil {
		clone.Issues = append([]string{}, s.Issues...)
	}

	return clone
}

// MoreComplex reports whether a is a strictly higher complexity than b.
func MoreComplex(a, b Complexity) bool {
	return complexityRank(a) > complexityRank(b)
}

func complexityRank(c Complexity) int {
	switch c {
	case ComplexityModerate:
		return 1
	case ComplexityComplex:
		return 2
	default:
		return 0
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	clone := make(map[string]any, len(m))
	for k, v := range m {
		clone[k] = v
	}

	return clone
}

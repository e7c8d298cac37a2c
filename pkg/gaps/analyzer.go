// Package gaps computes what is still missing from a specification and turns
// the gaps into a bounded set of clarifying questions.
package gaps

import (
	"fmt"

	"github.com/intelogroup/clixen/pkg/models"
)

// Kind identifies a class of missing information.
type Kind string

// Gap kinds, ordered most blocking first: an unresolved trigger invalidates
// every downstream question, so it always surfaces before action or
// integration detail.
const (
	KindTriggerUnresolved Kind = "trigger_unresolved"
	KindNoActions         Kind = "no_actions"
	KindActionIncomplete  Kind = "action_incomplete"
	KindNoIntegrations    Kind = "no_integrations"
	KindMissingParameters Kind = "missing_parameters"
)

var kindOrder = map[Kind]int{
	KindTriggerUnresolved: 0,
	KindNoActions:         1,
	KindActionIncomplete:  2,
	KindNoIntegrations:    3,
	KindMissingParameters: 4,
}

// Gap is one missing or ambiguous aspect of a specification.
type Gap struct {
	Kind    Kind   `json:"kind"`
	Subject string `json:"subject,omitempty"` // Action type or field the gap refers to
	Detail  string `json:"detail"`
}

// Analyze computes the gap set for a specification, ordered most blocking
// first. A complete specification yields an empty set.
func Analyze(spec *models.Specification) []Gap {
	if spec == nil {
		return []Gap{
			{Kind: KindTriggerUnresolved, Detail: "no requirements captured yet"},
			{Kind: KindNoActions, Detail: "no actions captured yet"},
		}
	}

	var found []Gap

	if !spec.Trigger.Resolved() {
		found = append(found, Gap{
			Kind:   KindTriggerUnresolved,
			Detail: "how the automation should start is not specified",
		})
	}

	if len(spec.Actions) == 0 {
		found = append(found, Gap{
			Kind:   KindNoActions,
			Detail: "no steps to execute have been described",
		})
	}

	for _, action := range spec.Actions {
		if action.Type == "" || action.Description == "" {
			found = append(found, Gap{
				Kind:    KindActionIncomplete,
				Subject: action.Type,
				Detail:  fmt.Sprintf("action %q is missing its type or description", action.Type),
			})
		} else if len(action.Parameters) == 0 {
			found = append(found, Gap{
				Kind:    KindMissingParameters,
				Subject: action.Type,
				Detail:  fmt.Sprintf("action %q has no configuration details", action.Type),
			})
		}
	}

	if len(spec.Integrations) == 0 && len(spec.Actions) > 0 {
		found = append(found, Gap{
			Kind:   KindNoIntegrations,
			Detail: "no external services have been identified",
		})
	}

	sortGaps(found)

	return found
}

// sortGaps orders by blocking priority, stable within a kind.
func sortGaps(gapSet []Gap) {
	for i := 1; i < len(gapSet); i++ {
		for j := i; j > 0 && kindOrder[gapSet[j].Kind] < kindOrder[gapSet[j-1].Kind]; j-- {
			gapSet[j], gapSet[j-1] = gapSet[j-1], gapSet[j]
		}
	}
}

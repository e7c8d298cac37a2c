package extraction

import "github.com/intelogroup/clixen/pkg/models"

// Merge combines a prior specification with a newly extracted partial one.
// Extraction is lossy per turn, so merging is asymmetric: the result never
// regresses information the prior specification already resolved.
//
//   - trigger: replaced only when the new trigger's type is resolved
//   - actions: appended when the type is not already present, never removed
//   - integrations: set union
//   - complexity: upgrade-only
//   - feasible: conjunction; issues: accumulated
//
// Both inputs are left untouched; the result is a fresh copy.
func Merge(prior, next *models.Specification) *models.Specification {
	if prior == nil {
		return next.Clone()
	}

	if next == nil {
		return prior.Clone()
	}

	merged := prior.Clone()

	if next.Trigger.Resolved() {
		merged.Trigger = models.TriggerSpec{
			Type:        next.Trigger.Type,
			Description: next.Trigger.Description,
			Parameters:  mergeParameters(prior.Trigger.Parameters, next.Trigger.Parameters),
		}
	} else if next.Trigger.Type == prior.Trigger.Type || next.Trigger.Type == models.TriggerTypeUnknown {
		// Unresolved extraction may still carry parameter details for the
		// existing trigger (e.g. a time answered to a clarifying question).
		merged.Trigger.Parameters = mergeParameters(prior.Trigger.Parameters, next.Trigger.Parameters)
	}

	for _, action := range next.Actions {
		if idx := actionIndex(merged.Actions, action.Type); idx >= 0 {
			// Same action mentioned again: enrich parameters, keep the
			// earlier description unless it was empty.
			merged.Actions[idx].Parameters = mergeParameters(merged.Actions[idx].Parameters, action.Parameters)
			if merged.Actions[idx].Description == "" {
				merged.Actions[idx].Description = action.Description
			}

			continue
		}

		merged.Actions = append(merged.Actions, models.ActionSpec{
			Type:        action.Type,
			Description: action.Description,
			Parameters:  mergeParameters(nil, action.Parameters),
		})
	}

	for _, integration := range next.Integrations {
		if !merged.HasIntegration(integration) {
			merged.Integrations = append(merged.Integrations, integration)
		}
	}

	if models.MoreComplex(next.Complexity, merged.Complexity) {
		merged.Complexity = next.Complexity
	}

	merged.Feasible = prior.Feasible && next.Feasible

	for _, issue := range next.Issues {
		if !containsString(merged.Issues, issue) {
			merged.Issues = append(merged.Issues, issue)
		}
	}

	return merged
}

func actionIndex(actions []models.ActionSpec, actionType string) int {
	for i, action := range actions {
		if action.Type == actionType {
			return i
		}
	}

	return -1
}

// mergeParameters overlays next onto prior without mutating either.
func mergeParameters(prior, next map[string]any) map[string]any {
	if prior == nil && next == nil {
		return nil
	}

	merged := make(map[string]any, len(prior)+len(next))
	for k, v := range prior {
		merged[k] = v
	}

	for k, v := range next {
		merged[k] = v
	}

	return merged
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}

	return false
}

package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/intelogroup/clixen/pkg/models"
)

// credentialKeys are parameter names whose inline values count as embedded
// secrets. Values that reference a credential store pass through.
var credentialKeys = map[string]bool{
	"password":      true,
	"passwd":        true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"access_key":    true,
	"private_key":   true,
	"client_secret": true,
	"auth":          true,
	"authorization": true,
}

// tokenPattern catches long opaque strings that look like keys even when the
// parameter name is innocuous.
var tokenPattern = regexp.MustCompile(`(?i)\b(sk|pk|ghp|xox[abp]|AKIA)[A-Za-z0-9_\-]{16,}\b`)

// checkSecurity looks for credentials embedded in node parameters and for
// triggers exposed without authentication. Embedded credentials block: the
// workflow definition is persisted and shipped to the engine verbatim, so a
// secret in a parameter is a secret in every copy of the artifact.
func checkSecurity(workflow *models.Workflow) checkResult {
	result := checkResult{Score: 100}

	for _, node := range workflow.Nodes {
		for key, value := range node.Parameters {
			text, ok := value.(string)
			if !ok || text == "" {
				continue
			}

			if credentialKeys[strings.ToLower(key)] && !isCredentialReference(text) {
				result.Score -= 30
				result.Issues = append(result.Issues, models.ValidationIssue{
					Severity: models.SeverityCritical,
					Category: "security",
					Message:  fmt.Sprintf("node %q embeds a credential in parameter %q, use a credential reference instead", node.ID, key),
					Blocking: true,
				})

				continue
			}

			if tokenPattern.MatchString(text) {
				result.Score -= 30
				result.Issues = append(result.Issues, models.ValidationIssue{
					Severity: models.SeverityCritical,
					Category: "security",
					Message:  fmt.Sprintf("node %q parameter %q contains what looks like an API key", node.ID, key),
					Blocking: true,
				})
			}
		}
	}

	for _, node := range workflow.TriggerNodes() {
		if node.Type != models.NodeTypeTriggerWebhook {
			continue
		}

		if _, ok := node.Parameters["auth"]; ok {
			continue
		}

		if _, ok := node.Parameters["secret_ref"]; ok {
			continue
		}

		result.Score -= 10
		result.Warnings = append(result.Warnings, models.ValidationWarning{
			Category: "security",
			Impact:   "unauthenticated entry point",
			Message:  fmt.Sprintf("webhook trigger %q accepts unauthenticated requests", node.ID),
		})
	}

	result.Score = clampScore(result.Score)

	return result
}

// isCredentialReference reports whether a value points at a credential store
// rather than carrying the secret itself.
func isCredentialReference(value string) bool {
	return strings.HasPrefix(value, "{{") ||
		strings.HasPrefix(value, "$") ||
		strings.HasPrefix(value, "ref:") ||
		strings.HasPrefix(value, "vault:")
}

package models

// Severity grades a validation issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// ValidationIssue is one defect found in a candidate artifact. Only blocking
// issues make the overall verdict invalid.
type ValidationIssue struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
	Blocking bool     `json:"blocking"`
}

// ValidationWarning is a non-blocking advisory finding.
type ValidationWarning struct {
	Category string `json:"category"`
	Impact   string `json:"impact"`
	Message  string `json:"message"`
}

// ValidationVerdict aggregates structural, performance and security checks
// over one candidate artifact. The overall score is the minimum of the
// per-dimension scores so that a single weak dimension caps the verdict.
type ValidationVerdict struct {
	Valid       bool                `json:"is_valid"`
	Score       int                 `json:"score"`
	Structural  int                 `json:"structural_score"`
	Performance int                 `json:"performance_score"`
	Security    int                 `json:"security_score"`
	Issues      []ValidationIssue   `json:"issues"`
	Warnings    []ValidationWarning `json:"warnings"`
}

// HasBlockingIssues reports whether any issue blocks generation.
func (v *ValidationVerdict) HasBlockingIssues() bool {
	for _, issue := range v.Issues {
		if issue.Blocking {
			return true
		}
	}

	return false
}

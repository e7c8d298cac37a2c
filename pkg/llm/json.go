package llm

import (
	"encoding/json"
	"strings"
)

const maxRawInError = 512

// ExtractJSON decodes the first JSON document found in raw model output into
// v. Models frequently wrap JSON in markdown fences or surround it with
// prose; both are tolerated. A missing or undecodable document returns a
// *ParseError, never a panic.
func ExtractJSON(raw string, v any) error {
	candidate := stripFences(raw)

	if start := strings.IndexAny(candidate, "{["); start >= 0 {
		candidate = candidate[start:]
		if end := lastBalanced(candidate); end > 0 {
			candidate = candidate[:end]
		}
	}

	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), v); err != nil {
		return &ParseError{Raw: truncate(raw, maxRawInError), Err: err}
	}

	return nil
}

func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop an optional language tag such as "json" on the fence line.
	if newline := strings.Index(trimmed, "\n"); newline >= 0 {
		trimmed = trimmed[newline+1:]
	}

	if closing := strings.LastIndex(trimmed, "```"); closing >= 0 {
		trimmed = trimmed[:closing]
	}

	return strings.TrimSpace(trimmed)
}

// lastBalanced returns the index one past the point where the first JSON
// value starting at position 0 closes, ignoring brackets inside strings.
func lastBalanced(s string) int {
	depth := 0
	inString := false
	escaped := false

	for i, r := range s {
		if escaped {
			escaped = false

			continue
		}

		switch {
		case r == '\\' && inString:
			escaped = true
		case r == '"':
			inString = !inString
		case inString:
		case r == '{' || r == '[':
			depth++
		case r == '}' || r == ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}

	return len(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}

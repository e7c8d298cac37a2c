// Package llm abstracts the text-completion surface the pipeline depends on.
// Providers return raw text; callers are responsible for decoding it into the
// shape they expect, treating non-parseable output as an operation failure.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Standard completion surface errors. Providers wrap transport failures into
// these so the retry coordinator can classify them.
var (
	ErrRateLimited = errors.New("completion rate limited")
	ErrTimeout     = errors.New("completion timed out")
	ErrEmptyOutput = errors.New("completion returned no output")
)

// CompletionRequest describes one completion call.
type CompletionRequest struct {
	System      string  // Optional system prompt
	Prompt      string  // User prompt
	Model       string  // Provider-specific model identifier; empty uses the provider default
	MaxTokens   int     // 0 uses the provider default
	Temperature float64 // Sampling temperature
}

// CompletionResponse carries the raw model output.
type CompletionResponse struct {
	Text  string
	Model string
}

// Client is the completion surface. Implementations must honor context
// cancellation and return rather than hang on slow providers.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// ParseError indicates model output that could not be decoded into the shape
// the caller expected.
type ParseError struct {
	Raw string // Offending output, truncated for logs
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable completion output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err stems from unparseable model output.
func IsParseError(err error) bool {
	var parseErr *ParseError

	return errors.As(err, &parseErr)
}

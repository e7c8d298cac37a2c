package cmd

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/intelogroup/clixen/pkg/llm"
)

// NewLLMClient creates a completion client based on the provider. A non-nil
// tracer wraps the client so every call shows up in traces.
func NewLLMClient(ctx context.Context, provider, model, apiKey, baseURL string, tracer trace.Tracer) (llm.Client, error) {
	var (
		client llm.Client
		err    error
	)

	switch provider {
	case "gemini":
		client, err = llm.NewGeminiClient(ctx, apiKey, model)
	case "openai", "":
		client = llm.NewOpenAIClient(baseURL, apiKey, model)
	case "stub":
		client = &llm.StubClient{}
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", provider, err)
	}

	if tracer != nil {
		client = llm.NewTracingClient(client, tracer)
	}

	return client, nil
}

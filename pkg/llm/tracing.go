package llm

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/intelogroup/clixen/pkg/otelhelper"
)

// TracingClient wraps a Client, recording one span per completion call.
type TracingClient struct {
	client Client
	tracer trace.Tracer
}

func NewTracingClient(client Client, tracer trace.Tracer) *TracingClient {
	return &TracingClient{client: client, tracer: tracer}
}

func (c *TracingClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "llm.complete",
		attribute.String(otelhelper.ModelKey, req.Model),
	)
	defer span.End()

	resp, err := c.client.Complete(ctx, req)
	if err != nil {
		otelhelper.SetError(span, err)

		return resp, err
	}

	span.SetAttributes(attribute.String(otelhelper.ModelKey, resp.Model))

	return resp, nil
}

package middleware

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for stageflow tracing.
const tracerName = "github.com/xraph/stageflow"

// Tracing returns middleware that wraps stage execution in an OpenTelemetry
// span. If no TracerProvider is configured globally, the default noop tracer
// is used and this middleware becomes a pass-through with zero overhead.
//
// Span attributes include: stageflow.workflow, stageflow.stage,
// stageflow.kind, stageflow.run_id. On error, the span status is set to
// codes.Error with the error message.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
// This variant allows injecting a specific TracerProvider for testing or
// when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, s *Stage, next Handler) error {
		ctx, span := tracer.Start(ctx, "stageflow.stage.execute",
			trace.WithAttributes(
				attribute.String("stageflow.workflow", s.Workflow),
				attribute.String("stageflow.stage", s.Name),
				attribute.String("stageflow.kind", s.Kind),
				attribute.String("stageflow.run_id", s.RunID.String()),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			var se *StageError
			if errors.As(err, &se) {
				span.SetStatus(codes.Error, fmt.Sprintf("%v", se.Cause))
			} else {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}

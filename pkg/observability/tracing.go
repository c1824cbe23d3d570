package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the name of the tracer for pipeline operations.
const TracerName = "draftgen/pipeline"

// Span attribute keys.
const (
	AttrCorrelationID = "correlation_id"
	AttrStage         = "stage"
	AttrLabel         = "intent_label"
	AttrTier          = "confidence_tier"
	AttrSource        = "generation_source"
	AttrReason        = "rejection_reason"
)

// Tracer provides spans around pipeline stages.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a pipeline tracer. Without a configured SDK provider
// the spans are no-ops, so tracing is always safe to leave enabled.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(TracerName)}
}

// StartProcess opens the root span for one pipeline run.
func (t *Tracer) StartProcess(ctx context.Context, correlationID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "draftgen.process",
		trace.WithAttributes(attribute.String(AttrCorrelationID, correlationID)))
}

// StartStage opens a span for one pipeline stage.
func (t *Tracer) StartStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "draftgen.stage."+stage,
		trace.WithAttributes(attribute.String(AttrStage, stage)))
}

// EndStage records the stage outcome on the span and ends it.
func EndStage(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

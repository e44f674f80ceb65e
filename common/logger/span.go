package logger

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "alertdesk.app/intake"

// SpanContext wraps an OTel span for managed lifecycle.
type SpanContext struct {
	ctx  context.Context
	span trace.Span
}

// StartSpan creates a child span of ctx. The caller must End it.
//
//	sc := logger.StartSpan(ctx, "intake.ingest")
//	defer sc.End()
//	ctx = sc.Context()
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) *SpanContext {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, opts...)
	return &SpanContext{ctx: ctx, span: span}
}

func (sc *SpanContext) Context() context.Context {
	return sc.ctx
}

func (sc *SpanContext) End() {
	if sc.span != nil {
		sc.span.End()
	}
}

// RecordError records err on the span and marks the span failed.
func (sc *SpanContext) RecordError(err error) {
	if sc.span != nil && err != nil {
		sc.span.RecordError(err)
		sc.span.SetStatus(codes.Error, err.Error())
	}
}

// TraceID returns the hex trace id, or "" when the span is not recording.
func (sc *SpanContext) TraceID() string {
	if sc.span == nil || !sc.span.SpanContext().IsValid() {
		return ""
	}
	return sc.span.SpanContext().TraceID().String()
}

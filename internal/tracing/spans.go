package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrClass      = "domain.class"
	AttrID         = "domain.id"
	AttrRenderMode = "render.mode"
	AttrBytes      = "output.bytes"
)

// Span names.
const (
	SpanPrefixExport = "export."
	SpanLoad         = "load"
	SpanRender       = "render"
)

// StartExport starts the root span of exporting one instance of class.
func StartExport(ctx context.Context, tracer trace.Tracer, class, id, mode string) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanPrefixExport+class, trace.WithAttributes(
		attribute.String(AttrClass, class),
		attribute.String(AttrID, id),
		attribute.String(AttrRenderMode, mode),
	))
}

// Finish records err on span, if any, and ends it.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

package log

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/product-pricing/pkg/correlationid"
)

var _ slog.Handler = enrichedHandler{}

// enrichedHandler adds request scoped attributes found in the context
// (correlation id, trace and span ids) to every record.
type enrichedHandler struct {
	next slog.Handler
}

func newEnrichedHandler(next slog.Handler) enrichedHandler {
	return enrichedHandler{next: next}
}

func (h enrichedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h enrichedHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(contextAttrs(ctx)...)
	return h.next.Handle(ctx, r)
}

func (h enrichedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newEnrichedHandler(h.next.WithAttrs(attrs))
}

func (h enrichedHandler) WithGroup(name string) slog.Handler {
	return newEnrichedHandler(h.next.WithGroup(name))
}

func contextAttrs(ctx context.Context) []slog.Attr {
	attrs := make([]slog.Attr, 0, 3)

	if correlationID, ok := correlationid.FromContext(ctx); ok {
		attrs = append(attrs, slog.String("correlation_id", correlationID))
	}

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	return attrs
}

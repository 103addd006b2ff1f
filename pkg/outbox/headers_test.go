package outbox_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/product-pricing/pkg/correlationid"
	"github.com/tuanvumaihuynh/product-pricing/pkg/outbox"
)

func TestHeadersRoundTrip(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x0f, 0x01},
		SpanID:     trace.SpanID{0x0e, 0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)
	ctx = correlationid.NewContext(ctx, "corr-42")

	headers := outbox.BuildHeaders(ctx)
	assert.Equal(t, "corr-42", headers[correlationid.Header])
	assert.Contains(t, headers, "traceparent")

	rec := &kgo.Record{}
	for k, v := range headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	extracted := outbox.ExtractContextFromRecord(context.Background(), rec)

	gotID, ok := correlationid.FromContext(extracted)
	assert.True(t, ok)
	assert.Equal(t, "corr-42", gotID)

	gotSpan := trace.SpanContextFromContext(extracted)
	assert.Equal(t, spanCtx.TraceID(), gotSpan.TraceID())
	assert.Equal(t, spanCtx.SpanID(), gotSpan.SpanID())
	assert.True(t, gotSpan.IsRemote())
}

func TestBuildHeadersWithoutContext(t *testing.T) {
	headers := outbox.BuildHeaders(context.Background())
	assert.NotContains(t, headers, correlationid.Header)
}

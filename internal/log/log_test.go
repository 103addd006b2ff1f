package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/product-pricing/internal/config"
	"github.com/tuanvumaihuynh/product-pricing/pkg/correlationid"
)

func TestEnrichedHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, config.Log{Format: config.LogFormatJSON, Level: slog.LevelInfo}))

	traceID := trace.TraceID{0x01, 0x02, 0x03}
	spanID := trace.SpanID{0x0a, 0x0b}
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})

	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)
	ctx = correlationid.NewContext(ctx, "corr-1")

	logger.With(slog.String("service", "http")).InfoContext(ctx, "product updated", slog.Int64("product_id", 7))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "product updated", entry["msg"])
	assert.Equal(t, "http", entry["service"])
	assert.Equal(t, float64(7), entry["product_id"])
	assert.Equal(t, "corr-1", entry["correlation_id"])
	assert.Equal(t, traceID.String(), entry["trace_id"])
	assert.Equal(t, spanID.String(), entry["span_id"])
}

func TestHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, config.Log{Format: config.LogFormatText, Level: slog.LevelWarn}))

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("visible")
	assert.Contains(t, buf.String(), "visible")
}

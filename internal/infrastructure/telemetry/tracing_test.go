package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupRecorder installs a recording tracer provider for the duration
// of the test and restores the previous global provider afterwards.
func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
	})

	return recorder
}

func TestStartServiceSpan(t *testing.T) {
	recorder := setupRecorder(t)

	ctx, span := StartServiceSpan(context.Background(), "pos_sale", "execute",
		WithAttribute(SpanAttrOrderNumber, "ORD-20260825-0001"),
		WithSpanKind(trace.SpanKindServer),
	)
	require.NotNil(t, span)
	assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "pos_sale.execute", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Contains(t, spans[0].Attributes(),
		attribute.String(SpanAttrOrderNumber, "ORD-20260825-0001"))
}

func TestRecordError(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := StartSpan(context.Background(), "inventory.adjust_stock")
	RecordError(span, errors.New("stock cannot go negative"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "stock cannot go negative", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestRecordError_NilSafe(t *testing.T) {
	// Must not panic on nil span or nil error.
	RecordError(nil, errors.New("ignored"))

	recorder := setupRecorder(t)
	_, span := StartSpan(context.Background(), "noop")
	RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestSetAttributes(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := StartSpan(context.Background(), "payment.reconcile")
	SetAttributes(span,
		SpanAttrReference, "MM-REF-001",
		SpanAttrQuantity, 3,
		"restockable", true,
		"amount_float", 129.99,
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String(SpanAttrReference, "MM-REF-001"))
	assert.Contains(t, attrs, attribute.Int(SpanAttrQuantity, 3))
	assert.Contains(t, attrs, attribute.Bool("restockable", true))
	assert.Contains(t, attrs, attribute.Float64("amount_float", 129.99))
}

func TestAddEvent(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := StartSpan(context.Background(), "pos_sale.execute")
	AddEvent(span, "stock_deducted",
		SpanAttrSKU, "TSH-RED-M",
		SpanAttrQuantity, 2,
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)
	event := spans[0].Events()[0]
	assert.Equal(t, "stock_deducted", event.Name)
	assert.Contains(t, event.Attributes, attribute.String(SpanAttrSKU, "TSH-RED-M"))
	assert.Contains(t, event.Attributes, attribute.Int(SpanAttrQuantity, 2))
}

func TestGetTraceID(t *testing.T) {
	setupRecorder(t)

	t.Run("returns the active trace ID", func(t *testing.T) {
		ctx, span := StartSpan(context.Background(), "order.confirm")
		defer span.End()

		traceID := GetTraceID(ctx)
		assert.Len(t, traceID, 32)
		assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
		assert.NotEmpty(t, GetSpanID(ctx))
	})

	t.Run("empty without a span", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
		assert.Empty(t, GetSpanID(context.Background()))
	})
}

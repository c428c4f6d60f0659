package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestDefaultTracingConfig(t *testing.T) {
	config := DefaultTracingConfig()

	assert.Equal(t, "icrelay", config.ServiceName)
	assert.Equal(t, "dev", config.ServiceVersion)
	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, 0.1, config.SampleRate)
	assert.False(t, config.Enabled)
	assert.True(t, config.UseStdout)
}

func TestNewTracingManager_NilLogger(t *testing.T) {
	tm := NewTracingManager(DefaultTracingConfig(), nil)
	require.NotNil(t, tm)
	assert.NotNil(t, tm.logger)
}

func TestTracingManager_DisabledTracing(t *testing.T) {
	tm := NewTracingManager(DefaultTracingConfig(), logrus.New())

	require.NoError(t, tm.Initialize(context.Background()))
	assert.Nil(t, tm.tracerProvider)
	assert.NoError(t, tm.Shutdown(context.Background()))
}

func TestTracingManager_EnabledWithStdout(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	config := DefaultTracingConfig()
	config.Enabled = true
	config.SampleRate = 1.0
	tm := NewTracingManager(config, logrus.New())

	require.NoError(t, tm.Initialize(context.Background()))
	assert.NotNil(t, tm.tracerProvider)

	require.NoError(t, tm.Shutdown(context.Background()))
	assert.NoError(t, tm.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestStartSpan(t *testing.T) {
	recorder := newRecorder(t)

	ctx, span := StartSpan(context.Background(), "relay.Relay", attribute.String("relay.destination", "public"))
	assert.NotEmpty(t, GetOtelTraceID(ctx))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "relay.Relay", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("relay.destination", "public"))
}

func TestAddSpanAttributesAndStatus(t *testing.T) {
	recorder := newRecorder(t)

	ctx, span := StartSpan(context.Background(), "op")
	AddSpanAttributes(ctx, attribute.Int("media.size_bytes", 42))
	SetSpanStatus(ctx, codes.Ok, "done")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Contains(t, ended[0].Attributes(), attribute.Int("media.size_bytes", 42))
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
}

func TestRecordError(t *testing.T) {
	recorder := newRecorder(t)

	ctx, span := StartSpan(context.Background(), "op")
	RecordError(ctx, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
}

func TestSpanHelpers_NoActiveSpan(t *testing.T) {
	ctx := context.Background()

	assert.NotPanics(t, func() {
		AddSpanAttributes(ctx, attribute.String("k", "v"))
		SetSpanStatus(ctx, codes.Error, "x")
		RecordError(ctx, errors.New("x"))
	})
	assert.Empty(t, GetOtelTraceID(ctx))
}

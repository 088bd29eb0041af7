package tracing

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/reglet-dev/doublecount/extension"
	"github.com/reglet-dev/doublecount/hostfuncs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	sr := tracetest.NewSpanRecorder()
	return sr, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestMiddleware_CreatesSpan(t *testing.T) {
	sr, tp := newRecorder()
	reg, err := extension.MustNew().Registry(hostfuncs.WithMiddleware(Middleware(tp)))
	require.NoError(t, err)

	payload := []byte(`{"val":"aabb"}`)
	_, err = reg.Invoke(context.Background(), extension.CanonicalExport, payload)
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]

	assert.Equal(t, "invoke "+extension.CanonicalExport, span.Name())
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())
	assert.Equal(t, codes.Ok, span.Status().Code)

	attrs := attrMap(span.Attributes())
	assert.Equal(t, extension.CanonicalExport, attrs[AttrFunction].AsString())
	assert.Equal(t, "ok", attrs[AttrStatus].AsString())
	assert.Equal(t, int64(len(payload)), attrs[AttrInputBytes].AsInt64())
	assert.NotEmpty(t, attrs[AttrInvocationID].AsString())
}

func TestMiddleware_Rejected(t *testing.T) {
	sr, tp := newRecorder()
	reg, err := extension.MustNew().Registry(hostfuncs.WithMiddleware(Middleware(tp)))
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), extension.CanonicalExport, []byte(`{"val":false}`))
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "rejected", attrs[AttrStatus].AsString())
	assert.Equal(t, "VALIDATION_ERROR", attrs[AttrErrorType].AsString())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestMiddleware_Failed(t *testing.T) {
	sr, tp := newRecorder()
	reg, err := hostfuncs.NewRegistry(
		hostfuncs.WithMiddleware(Middleware(tp)),
		hostfuncs.WithByteHandler("broken", func(context.Context, []byte) ([]byte, error) {
			return nil, errors.New("boom")
		}),
	)
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "broken", nil)
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestMiddleware_InnerHandlersSeeHostContext(t *testing.T) {
	sr, tp := newRecorder()

	var gotName string
	var gotSpan trace.SpanContext
	reg, err := hostfuncs.NewRegistry(
		hostfuncs.WithMiddleware(Middleware(tp)),
		hostfuncs.WithByteHandler("inspect", func(ctx context.Context, _ []byte) ([]byte, error) {
			gotName = hostfuncs.FunctionNameFrom(ctx)
			gotSpan = trace.SpanContextFromContext(ctx)
			return []byte(`{}`), nil
		}),
	)
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "inspect", nil)
	require.NoError(t, err)

	assert.Equal(t, "inspect", gotName)
	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, sr.Ended()[0].SpanContext().SpanID(), gotSpan.SpanID())
}

func TestMiddleware_NilProviderUsesGlobal(t *testing.T) {
	reg, err := extension.MustNew().Registry(hostfuncs.WithMiddleware(Middleware(nil)))
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), extension.CanonicalExport, []byte(`{"val":"x"}`))
	assert.NoError(t, err)
}

func TestLogProvider(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tp := NewLogProvider(logger)
	defer func() { assert.NoError(t, tp.Shutdown(context.Background())) }()

	reg, err := extension.MustNew().Registry(hostfuncs.WithMiddleware(Middleware(tp)))
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "count_doubles_fold", []byte(`{"val":"zz"}`))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `msg="span invoke count_doubles_fold"`)
	assert.Contains(t, out, "doubles.function=count_doubles_fold")
	assert.Contains(t, out, "doubles.status=ok")
	assert.Contains(t, out, "trace_id=")
}

package tracing

import (
	"context"

	"github.com/reglet-dev/doublecount/domain/entities"
	"github.com/reglet-dev/doublecount/hostfuncs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies the tracer.
const InstrumentationName = "github.com/reglet-dev/doublecount"

// Attribute keys set on every invocation span.
const (
	AttrFunction     = attribute.Key("doubles.function")
	AttrInvocationID = attribute.Key("doubles.invocation_id")
	AttrInputBytes   = attribute.Key("doubles.input_bytes")
	AttrStatus       = attribute.Key("doubles.status")
	AttrErrorType    = attribute.Key("doubles.error_type")
)

// Middleware starts one span per invocation on tp's tracer.
// A nil tp uses the global provider.
//
// The span is named "invoke <function>". Only handler errors give the span
// an error status; ErrorResponse answers are recorded as attributes.
func Middleware(tp trace.TracerProvider) hostfuncs.Middleware {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(InstrumentationName)

	return func(next hostfuncs.ByteHandler) hostfuncs.ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			name := hostfuncs.FunctionNameFrom(ctx)
			attrs := []attribute.KeyValue{
				AttrFunction.String(name),
				AttrInputBytes.Int(len(payload)),
			}
			if hc, ok := ctx.(hostfuncs.HostContext); ok {
				attrs = append(attrs, AttrInvocationID.String(hc.InvocationID()))
			}

			spanCtx, span := tracer.Start(ctx, "invoke "+name,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			resp, err := next(rebind(ctx, spanCtx), payload)

			status := hostfuncs.StatusOf(resp, err)
			span.SetAttributes(AttrStatus.String(string(status)))
			switch status {
			case entities.InvocationFailed:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			case entities.InvocationRejected:
				if er, ok := hostfuncs.ParseErrorResponse(resp); ok {
					span.SetAttributes(AttrErrorType.String(er.Error))
				}
			default:
				span.SetStatus(codes.Ok, "")
			}
			return resp, err
		}
	}
}

// rebind keeps the HostContext seen by inner handlers while carrying the span.
func rebind(orig, spanCtx context.Context) context.Context {
	hc, ok := orig.(hostfuncs.HostContext)
	if !ok {
		return spanCtx
	}
	return &spanHostContext{HostContext: hc, span: spanCtx}
}

// spanHostContext is a HostContext whose values also include the active span.
type spanHostContext struct {
	hostfuncs.HostContext
	span context.Context
}

// Value reads through the span context, which wraps the HostContext.
func (c *spanHostContext) Value(key any) any {
	return c.span.Value(key)
}

package hostfuncs

import (
	"context"
	"log/slog"
	"time"

	"github.com/reglet-dev/doublecount/domain/entities"
	"github.com/reglet-dev/doublecount/domain/ports"
)

// Middleware is a function that wraps a ByteHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next ByteHandler) ByteHandler

// RegistryOption is a functional option for configuring a HandlerRegistry.
type RegistryOption func(*registryBuilder)

// PanicRecoveryMiddleware returns a middleware that catches panics and converts
// them to structured ErrorResponse JSON instead of crashing the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp = NewPanicError(r).ToJSON()
					err = nil // Return JSON error, not Go error
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware logs every invocation on logger.
// Successful calls are logged at debug level, rejected calls at warn and
// failed calls at error.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			start := time.Now()
			resp, err := next(ctx, payload)
			inv := summarize(ctx, start, payload, resp, err)

			attrs := []slog.Attr{
				slog.String("function", inv.Function),
				slog.String("invocation_id", inv.ID),
				slog.Duration("duration", inv.Duration),
				slog.Int("input_bytes", inv.InputBytes),
			}
			switch inv.Status {
			case entities.InvocationFailed:
				attrs = append(attrs, slog.Any("error", err))
				logger.LogAttrs(ctx, slog.LevelError, "invocation failed", attrs...)
			case entities.InvocationRejected:
				if er, ok := ParseErrorResponse(resp); ok {
					attrs = append(attrs, slog.String("error_type", er.Error), slog.String("message", er.Message))
				}
				logger.LogAttrs(ctx, slog.LevelWarn, "invocation rejected", attrs...)
			default:
				logger.LogAttrs(ctx, slog.LevelDebug, "invocation completed", attrs...)
			}
			return resp, err
		}
	}
}

// RecorderMiddleware reports every completed invocation to rec.
func RecorderMiddleware(rec ports.InvocationRecorder) Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			start := time.Now()
			resp, err := next(ctx, payload)
			rec.RecordInvocation(summarize(ctx, start, payload, resp, err))
			return resp, err
		}
	}
}

// summarize builds the Invocation record for a finished call.
func summarize(ctx context.Context, start time.Time, payload, resp []byte, err error) entities.Invocation {
	inv := entities.Invocation{
		Start:      start,
		Function:   FunctionNameFrom(ctx),
		Duration:   time.Since(start),
		InputBytes: len(payload),
		Status:     StatusOf(resp, err),
	}
	if hc, ok := ctx.(HostContext); ok {
		inv.ID = hc.InvocationID()
	}
	return inv
}

// StatusOf classifies a handler result.
func StatusOf(resp []byte, err error) entities.InvocationStatus {
	if err != nil {
		return entities.InvocationFailed
	}
	if _, ok := ParseErrorResponse(resp); ok {
		return entities.InvocationRejected
	}
	return entities.InvocationOK
}

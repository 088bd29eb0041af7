package hostfuncs

import (
	"context"

	"github.com/google/uuid"
)

// HostContext wraps a standard context.Context with invocation helpers.
// It carries the invoked function name and a per-call invocation ID.
type HostContext interface {
	context.Context

	// FunctionName returns the name of the function being invoked.
	FunctionName() string

	// InvocationID returns a random ID unique to this call.
	InvocationID() string
}

type hostContext struct {
	context.Context
	funcName     string
	invocationID string
}

// NewHostContext creates a new HostContext wrapping the given context.
func NewHostContext(ctx context.Context, funcName string) HostContext {
	return &hostContext{
		Context:      ctx,
		funcName:     funcName,
		invocationID: uuid.NewString(),
	}
}

func (c *hostContext) FunctionName() string {
	return c.funcName
}

func (c *hostContext) InvocationID() string {
	return c.invocationID
}

// HostContextFrom extracts a HostContext from a context.Context.
// If the context is already a HostContext, it is returned directly.
// Otherwise, a new HostContext is created wrapping the given context.
func HostContextFrom(ctx context.Context, funcName string) HostContext {
	if hc, ok := ctx.(HostContext); ok {
		return hc
	}
	return NewHostContext(ctx, funcName)
}

// FunctionNameFrom returns the function name carried by ctx, or "unknown".
func FunctionNameFrom(ctx context.Context) string {
	if hc, ok := ctx.(HostContext); ok {
		return hc.FunctionName()
	}
	return "unknown"
}

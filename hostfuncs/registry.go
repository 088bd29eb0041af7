package hostfuncs

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sort"

	domainErrors "github.com/reglet-dev/doublecount/domain/errors"
)

// HandlerRegistry is an immutable collection of named handlers.
// Once created via NewRegistry, handlers cannot be added or removed,
// so lookups are lock-free and safe for concurrent Invoke calls.
type HandlerRegistry struct {
	handlers       map[string]ByteHandler
	names          []string // sorted for consistent iteration
	middleware     []Middleware
	maxRequestSize int
}

// registryBuilder accumulates configuration during registry construction.
type registryBuilder struct {
	handlers       map[string]ByteHandler
	middleware     []Middleware
	errors         []error
	maxRequestSize int
}

// NewRegistry creates an immutable HandlerRegistry with the given options.
// Every registration problem (empty or duplicate names) is reported in the
// returned error.
//
// Example usage:
//
//	registry, err := NewRegistry(
//	    WithMiddleware(PanicRecoveryMiddleware()),
//	    WithBundle(extension.Bundle()),
//	    WithHandler("custom", customHandler),
//	)
func NewRegistry(opts ...RegistryOption) (*HandlerRegistry, error) {
	b := &registryBuilder{
		handlers:       make(map[string]ByteHandler),
		maxRequestSize: DefaultMaxRequestSize,
	}

	for _, opt := range opts {
		opt(b)
	}

	if len(b.errors) > 0 {
		return nil, stdErrors.Join(b.errors...)
	}

	names := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		names = append(names, name)
	}
	sort.Strings(names)

	// First middleware ends up outermost.
	wrappedHandlers := make(map[string]ByteHandler, len(b.handlers))
	for name, handler := range b.handlers {
		wrapped := handler
		for i := len(b.middleware) - 1; i >= 0; i-- {
			wrapped = b.middleware[i](wrapped)
		}
		wrappedHandlers[name] = wrapped
	}

	return &HandlerRegistry{
		handlers:       wrappedHandlers,
		names:          names,
		middleware:     b.middleware,
		maxRequestSize: b.maxRequestSize,
	}, nil
}

// Invoke dispatches a call by name.
// Unknown names and oversized payloads are answered with ErrorResponse JSON;
// a Go error is only returned when the handler itself fails.
func (r *HandlerRegistry) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return NewNotFoundError(name).ToJSON(), nil
	}

	if r.maxRequestSize > 0 && len(payload) > r.maxRequestSize {
		msg := fmt.Sprintf("request size %d exceeds maximum %d bytes", len(payload), r.maxRequestSize)
		return NewValidationError(msg).ToJSON(), nil
	}

	hctx := HostContextFrom(ctx, name)
	return handler(hctx, payload)
}

// Has returns true if a handler with the given name is registered.
func (r *HandlerRegistry) Has(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Names returns a sorted list of all registered handler names.
func (r *HandlerRegistry) Names() []string {
	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

// Len returns the number of registered handlers.
func (r *HandlerRegistry) Len() int {
	return len(r.names)
}

// MaxRequestSize returns the payload limit enforced by Invoke, or 0 if unlimited.
func (r *HandlerRegistry) MaxRequestSize() int {
	return r.maxRequestSize
}

// addHandler registers a handler with the given name.
func (b *registryBuilder) addHandler(name string, handler ByteHandler) error {
	if name == "" {
		return &domainErrors.ExportError{Export: name, Err: fmt.Errorf("handler name cannot be empty")}
	}
	if handler == nil {
		return &domainErrors.ExportError{Export: name, Err: fmt.Errorf("handler cannot be nil")}
	}
	if _, exists := b.handlers[name]; exists {
		return &domainErrors.ExportError{Export: name, Err: fmt.Errorf("duplicate handler name: %q", name)}
	}
	b.handlers[name] = handler
	return nil
}

// WithByteHandler registers a raw ByteHandler with the given name.
// Use WithHandler for type-safe registration with automatic JSON handling.
func WithByteHandler(name string, handler ByteHandler) RegistryOption {
	return func(b *registryBuilder) {
		if err := b.addHandler(name, handler); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}

// WithMaxRequestSize caps the payload size accepted by Invoke.
// A value of 0 disables the check.
func WithMaxRequestSize(size int) RegistryOption {
	return func(b *registryBuilder) {
		if size < 0 {
			b.errors = append(b.errors, fmt.Errorf("max request size cannot be negative: %d", size))
			return
		}
		b.maxRequestSize = size
	}
}

package host

import (
	"log/slog"

	"github.com/reglet-dev/doublecount/extension"
	"github.com/reglet-dev/doublecount/hostfuncs"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithModule sets the extension module exposed to guests.
func WithModule(mod *extension.Module) Option {
	return func(e *Executor) {
		e.module = mod
	}
}

// WithHostFunctions replaces the registry built from the module.
func WithHostFunctions(registry *hostfuncs.HandlerRegistry) Option {
	return func(e *Executor) {
		e.registry = registry
	}
}

// WithLogger sets the logger used for guest log messages and ABI failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithoutNative skips registration of the native host module.
func WithoutNative() Option {
	return func(e *Executor) {
		e.skipNative = true
	}
}

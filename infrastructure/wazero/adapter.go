package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/doublecount/hostfuncs"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// DefaultModuleName is the host module name used by RegisterWithRuntime.
const DefaultModuleName = "doubles"

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// Logger receives ABI failures. Defaults to slog.Default().
	Logger *slog.Logger

	// ModuleName is the host module name (default: "doubles").
	ModuleName string

	// CustomHandlers are extra functions that don't use the packed JSON
	// request/response pattern.
	CustomHandlers []CustomHandler

	// MaxRequestSize limits the size of incoming requests from guest memory.
	// Default is 1MB.
	MaxRequestSize uint32
}

// CustomHandler is a raw wazero function registered next to the registry handlers.
type CustomHandler struct {
	// Handler is the wazero GoModuleFunc implementation.
	Handler api.GoModuleFunc

	// Name is the exported function name.
	Name string

	// ParamTypes are the WASM parameter types.
	ParamTypes []api.ValueType

	// ResultTypes are the WASM result types.
	ResultTypes []api.ValueType
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name.
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMaxRequestSize sets the maximum request size read from guest memory.
func WithMaxRequestSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxRequestSize = size
	}
}

// WithLogger sets the logger used for ABI failures.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		c.Logger = logger
	}
}

// WithCustomHandler adds a raw wazero handler.
func WithCustomHandler(h CustomHandler) AdapterOption {
	return func(c *AdapterConfig) {
		c.CustomHandlers = append(c.CustomHandlers, h)
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName:     DefaultModuleName,
		MaxRequestSize: hostfuncs.DefaultMaxRequestSize,
	}
}

func buildConfig(opts []AdapterOption) AdapterConfig {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// RegisterWithRuntime registers every handler of registry as a function of
// one host module.
//
// Each function:
//   - reads the request from guest memory using the packed i64 ptr+len format
//   - invokes the registry handler of the same name
//   - writes the response into memory obtained from the guest's allocate export
//   - returns the packed i64 ptr+len of the response
//
// Example:
//
//	registry, _ := extension.MustNew().Registry()
//	err := wazero.RegisterWithRuntime(ctx, runtime, registry,
//	    wazero.WithModuleName("doubles"),
//	)
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, registry *hostfuncs.HandlerRegistry, opts ...AdapterOption) error {
	cfg := buildConfig(opts)
	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)

	for _, name := range registry.Names() {
		funcName := name
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = cfg.handleRegistryCall(ctx, newGuest(ctx, mod), registry, funcName, stack[0])
			}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
			Export(funcName)
	}

	for _, ch := range cfg.CustomHandlers {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(ch.Handler, ch.ParamTypes, ch.ResultTypes).
			Export(ch.Name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("failed to instantiate host module %s: %w", cfg.ModuleName, err)
	}
	return nil
}

// handleRegistryCall serves one call from the guest and returns the packed response.
func (cfg AdapterConfig) handleRegistryCall(ctx context.Context, g guest, registry *hostfuncs.HandlerRegistry, name string, packed uint64) uint64 {
	logger := cfg.Logger.With("function", name, "guest", g.name)
	ptr, length := unpackPtrLen(packed)

	if cfg.MaxRequestSize > 0 && length > cfg.MaxRequestSize {
		msg := fmt.Sprintf("request size %d exceeds maximum %d bytes", length, cfg.MaxRequestSize)
		logger.ErrorContext(ctx, "wazero: "+msg)
		return cfg.writeResponse(ctx, g, logger, hostfuncs.NewValidationError(msg).ToJSON())
	}

	request, err := g.read(ptr, length)
	if err != nil {
		logger.ErrorContext(ctx, "wazero: failed to read request from guest memory", "error", err)
		return cfg.writeResponse(ctx, g, logger, hostfuncs.NewInternalError("failed to read request from guest memory").ToJSON())
	}

	response, err := registry.Invoke(ctx, name, request)
	if err != nil {
		logger.ErrorContext(ctx, "wazero: handler invocation failed", "error", err)
		return cfg.writeResponse(ctx, g, logger, hostfuncs.NewInternalError(err.Error()).ToJSON())
	}

	return cfg.writeResponse(ctx, g, logger, response)
}

// writeResponse returns the packed location of data in guest memory, or 0 on failure.
func (cfg AdapterConfig) writeResponse(ctx context.Context, g guest, logger *slog.Logger, data []byte) uint64 {
	packed, err := g.write(ctx, data)
	if err != nil {
		logger.ErrorContext(ctx, "wazero: failed to write response to guest memory", "error", err)
		return 0
	}
	return packed
}

package wazero

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/reglet-dev/doublecount/extension"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// NativeSuffix is appended to the module name for the native host module.
const NativeSuffix = "_native"

// NativeErrorResult is returned by a native export when its argument cannot
// be read or is not a string. No real count reaches this value.
const NativeErrorResult = ^uint64(0)

// NativeHandlers returns one raw handler per counting export of mod.
// Each takes a packed i64 ptr+len of UTF-8 bytes and returns the count as i64.
func NativeHandlers(mod *extension.Module, opts ...AdapterOption) []CustomHandler {
	cfg := buildConfig(opts)
	exports := mod.Exports()

	handlers := make([]CustomHandler, 0, len(exports))
	for _, e := range exports {
		export := e
		handlers = append(handlers, CustomHandler{
			Name: export.Name,
			Handler: api.GoModuleFunc(func(ctx context.Context, m api.Module, stack []uint64) {
				stack[0] = cfg.handleNativeCall(ctx, newGuest(ctx, m), export, stack[0])
			}),
			ParamTypes:  []api.ValueType{api.ValueTypeI64},
			ResultTypes: []api.ValueType{api.ValueTypeI64},
		})
	}
	return handlers
}

// RegisterNative registers the native counting exports of mod as the host
// module "<name>_native". WithModuleName overrides the derived name.
func RegisterNative(ctx context.Context, runtime wazero.Runtime, mod *extension.Module, opts ...AdapterOption) error {
	cfg := buildConfig(append([]AdapterOption{WithModuleName(mod.Name() + NativeSuffix)}, opts...))
	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)

	for _, h := range NativeHandlers(mod, opts...) {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(h.Handler, h.ParamTypes, h.ResultTypes).
			Export(h.Name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("failed to instantiate host module %s: %w", cfg.ModuleName, err)
	}
	return nil
}

// handleNativeCall counts the string at the packed location.
// Bytes that are not valid UTF-8 are rejected, like any other non-string argument.
func (cfg AdapterConfig) handleNativeCall(ctx context.Context, g guest, export extension.Export, packed uint64) uint64 {
	logger := cfg.Logger.With("function", export.Name, "guest", g.name)
	ptr, length := unpackPtrLen(packed)

	if cfg.MaxRequestSize > 0 && length > cfg.MaxRequestSize {
		logger.ErrorContext(ctx, "wazero: native argument too large", "size", length, "max", cfg.MaxRequestSize)
		return NativeErrorResult
	}

	data, err := g.read(ptr, length)
	if err != nil {
		logger.ErrorContext(ctx, "wazero: failed to read native argument", "error", err)
		return NativeErrorResult
	}
	if !utf8.Valid(data) {
		logger.WarnContext(ctx, "wazero: native argument is not a string", slog.Int("size", len(data)))
		return NativeErrorResult
	}

	return export.Count(string(data))
}

package host

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	domainErrors "github.com/reglet-dev/doublecount/domain/errors"
	"github.com/reglet-dev/doublecount/extension"
	"github.com/reglet-dev/doublecount/hostfuncs"
	adapter "github.com/reglet-dev/doublecount/infrastructure/wazero"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// LogExport is the host function guests call to emit a log line.
const LogExport = "log_message"

// Executor manages the lifecycle of WASM guests.
type Executor struct {
	runtime    wazero.Runtime
	module     *extension.Module
	registry   *hostfuncs.HandlerRegistry
	logger     *slog.Logger
	skipNative bool
}

// NewExecutor creates a runtime and registers the module's host functions.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.module == nil {
		mod, err := extension.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create default module: %w", err)
		}
		e.module = mod
	}
	if e.registry == nil {
		reg, err := e.module.Registry(hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()))
		if err != nil {
			return nil, fmt.Errorf("failed to create registry: %w", err)
		}
		e.registry = reg
	}

	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	e.runtime = rt

	if err := e.registerHostFunctions(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return e, nil
}

func (e *Executor) registerHostFunctions(ctx context.Context) error {
	opts := []adapter.AdapterOption{
		adapter.WithModuleName(e.module.Name()),
		adapter.WithLogger(e.logger),
		adapter.WithCustomHandler(adapter.CustomHandler{
			Name:        LogExport,
			Handler:     e.logMessage,
			ParamTypes:  []api.ValueType{api.ValueTypeI64},
			ResultTypes: []api.ValueType{},
		}),
		adapter.WithMaxRequestSize(e.requestLimit()),
	}

	if err := adapter.RegisterWithRuntime(ctx, e.runtime, e.registry, opts...); err != nil {
		return err
	}
	if e.skipNative {
		return nil
	}
	return adapter.RegisterNative(ctx, e.runtime, e.module,
		adapter.WithLogger(e.logger),
		adapter.WithMaxRequestSize(e.requestLimit()),
	)
}

// requestLimit is the registry's payload limit as a guest memory length.
// Zero means unlimited.
func (e *Executor) requestLimit() uint32 {
	size := e.registry.MaxRequestSize()
	if uint64(size) > math.MaxUint32 { //nolint:gosec // G115: registry limits are never negative
		return math.MaxUint32
	}
	return uint32(size) //nolint:gosec // G115: bounded above
}

// logMessage handles log_message. The payload is {"level": ..., "message": ...}.
func (e *Executor) logMessage(ctx context.Context, m api.Module, stack []uint64) {
	ptr := uint32(stack[0] >> 32) //nolint:gosec // G115: Packed format stores 32-bit values
	length := uint32(stack[0])    //nolint:gosec // G115: Packed format stores 32-bit values

	mem := m.Memory()
	if mem == nil {
		return
	}
	payload, ok := mem.Read(ptr, length)
	if !ok {
		return
	}

	var msg struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		e.logger.InfoContext(ctx, "guest log (raw)", "guest", m.Name(), "payload", string(payload))
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(msg.Level)); err != nil {
		level = slog.LevelInfo
	}
	e.logger.Log(ctx, level, msg.Message, "guest", m.Name())
}

// Module returns the extension module exposed to guests.
func (e *Executor) Module() *extension.Module {
	return e.module
}

// Registry returns the registry backing the JSON host module.
func (e *Executor) Registry() *hostfuncs.HandlerRegistry {
	return e.registry
}

// Close releases resources held by the executor.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// PluginInstance represents an instantiated WASM guest.
type PluginInstance struct {
	module api.Module
}

// LoadPlugin instantiates a WASM module.
func (e *Executor) LoadPlugin(ctx context.Context, wasmBytes []byte) (*PluginInstance, error) {
	cfg := wazero.NewModuleConfig().WithStartFunctions()
	mod, err := e.runtime.InstantiateWithConfig(ctx, wasmBytes, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	return &PluginInstance{module: mod}, nil
}

// Name returns the instantiated module's name.
func (p *PluginInstance) Name() string {
	return p.module.Name()
}

// Call invokes a guest export that takes a packed ptr+len payload and returns
// a packed ptr+len response. The response bytes are copied out of guest memory.
func (p *PluginInstance) Call(ctx context.Context, name string, payload []byte) ([]byte, error) {
	f := p.module.ExportedFunction(name)
	if f == nil {
		return nil, &domainErrors.ExportError{Module: p.module.Name(), Export: name, Err: domainErrors.ErrUnknownExport}
	}

	arg, err := p.write(ctx, payload)
	if err != nil {
		return nil, err
	}

	results, err := f.Call(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("export %q returned no results", name)
	}
	return p.read(results[0])
}

// Close closes the guest module.
func (p *PluginInstance) Close(ctx context.Context) error {
	return p.module.Close(ctx)
}

func (p *PluginInstance) write(ctx context.Context, payload []byte) (uint64, error) {
	if len(payload) == 0 {
		return 0, nil
	}
	allocate := p.module.ExportedFunction(adapter.AllocateExport)
	if allocate == nil {
		return 0, fmt.Errorf("guest does not export %q", adapter.AllocateExport)
	}
	res, err := allocate.Call(ctx, uint64(len(payload)))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate in guest: %w", err)
	}
	if len(res) == 0 {
		return 0, fmt.Errorf("allocate returned no results")
	}
	ptr := uint32(res[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit
	if !p.module.Memory().Write(ptr, payload) {
		return 0, fmt.Errorf("failed to write input to guest memory")
	}
	return uint64(ptr)<<32 | uint64(len(payload)), nil
}

func (p *PluginInstance) read(packed uint64) ([]byte, error) {
	ptr := uint32(packed >> 32) //nolint:gosec // G115: Packed format stores 32-bit values
	length := uint32(packed)    //nolint:gosec // G115: Packed format stores 32-bit values
	if ptr == 0 || length == 0 {
		return nil, fmt.Errorf("null response from plugin")
	}
	data, ok := p.module.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("failed to read response from memory")
	}
	out := make([]byte, length)
	copy(out, data)
	return out, nil
}

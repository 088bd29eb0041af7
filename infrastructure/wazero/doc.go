// Package wazero registers the doubles module with a wazero runtime.
//
// Two host modules can be registered:
//
//   - RegisterWithRuntime exposes every handler of a hostfuncs.HandlerRegistry
//     under the module name (default "doubles"). Each function takes and returns
//     a packed i64 pointer+length pointing at JSON in guest memory.
//   - RegisterNative exposes the counting exports under "<name>_native". Each
//     function takes a packed i64 pointer+length pointing at raw string bytes
//     and returns the count as an i64.
//
// Responses from the JSON module are written into memory obtained from the
// guest's "allocate" export. A guest without that export gets 0 back.
//
// # Basic Usage
//
//	mod := extension.MustNew()
//	registry, err := mod.Registry(
//	    hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
//	)
//	if err != nil {
//	    return err
//	}
//
//	runtime := wazero.NewRuntime(ctx)
//	if err := adapter.RegisterWithRuntime(ctx, runtime, registry); err != nil {
//	    return err
//	}
//	if err := adapter.RegisterNative(ctx, runtime, mod); err != nil {
//	    return err
//	}
//
// # Packed pointers
//
// The upper 32 bits of a packed value hold the guest pointer and the lower
// 32 bits hold the length. A zero result means no response could be written.
package wazero

// Package hostfuncs provides a named-function registry that a host runtime
// dispatches into.
//
// Handlers exchange JSON bytes. The registry is immutable once built, so
// lookups need no locking, and every handler is wrapped by the configured
// middleware chain (panic recovery, logging, metrics, tracing).
// Nothing in this package depends on a WASM runtime; the wazero adapter
// lives in infrastructure/wazero.
package hostfuncs

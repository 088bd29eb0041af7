// Package host runs WASM guests against the doubles module.
//
// An Executor owns a wazero runtime with WASI, the JSON host module built
// from an extension.Module's registry and the matching native host module.
// Guests import either module by name and call the counting exports.
package host

package hostfuncs

// DefaultMaxRequestSize limits the size of incoming requests (1MB).
// Guests cannot trigger large host allocations by claiming huge lengths.
const DefaultMaxRequestSize = 1 * 1024 * 1024

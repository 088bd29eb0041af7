// Package observability groups the metrics and tracing adapters for the
// handler registry. Both plug in as hostfuncs middleware.
package observability

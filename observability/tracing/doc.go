// Package tracing wraps registry invocations in OpenTelemetry spans.
package tracing

package ports

import "github.com/reglet-dev/doublecount/domain/entities"

// InvocationRecorder receives a summary of every completed registry call.
// Implementations must be safe for concurrent use.
type InvocationRecorder interface {
	RecordInvocation(inv entities.Invocation)
}

// SchemaGenerator produces a JSON Schema document for a Go value.
type SchemaGenerator interface {
	Generate(v any) ([]byte, error)
}

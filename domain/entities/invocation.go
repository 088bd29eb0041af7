package entities

import (
	"time"
)

// InvocationStatus is the outcome label recorded for a handler invocation.
type InvocationStatus string

const (
	// InvocationOK means the handler produced a normal response.
	InvocationOK InvocationStatus = "ok"

	// InvocationRejected means the handler answered with an ErrorResponse.
	InvocationRejected InvocationStatus = "rejected"

	// InvocationFailed means the handler returned a Go error.
	InvocationFailed InvocationStatus = "failed"
)

// Invocation summarizes one completed call through the registry.
type Invocation struct {
	Start      time.Time        `json:"start"`
	Function   string           `json:"function"`
	ID         string           `json:"id,omitempty"`
	Status     InvocationStatus `json:"status"`
	Duration   time.Duration    `json:"duration_ns"`
	InputBytes int              `json:"input_bytes"`
}

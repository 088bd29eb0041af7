package entities

import "fmt"

// ErrorDetail provides structured error information.
// The CLI renders every failure through it, e.g. "config: ... [log.level]".
// Error Types: "config", "validation", "not_found", "schema", "internal"
type ErrorDetail struct {
	// Wrapped contains a wrapped error for error chains.
	Wrapped *ErrorDetail `json:"wrapped,omitempty"`

	// Details contains additional error context.
	Details map[string]any `json:"details,omitempty"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Type categorizes the error.
	Type string `json:"type"`

	// Code is a machine-readable error code, e.g. the offending field.
	Code string `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped.Error())
	}
	return msg
}

// NewErrorDetail creates a new ErrorDetail with the given type and message.
func NewErrorDetail(errorType, message string) *ErrorDetail {
	return &ErrorDetail{
		Type:    errorType,
		Message: message,
	}
}

// WithDetails attaches details and returns the receiver.
func (e *ErrorDetail) WithDetails(details map[string]any) *ErrorDetail {
	e.Details = details
	return e
}

// WithCode sets the code and returns the receiver.
func (e *ErrorDetail) WithCode(code string) *ErrorDetail {
	e.Code = code
	return e
}

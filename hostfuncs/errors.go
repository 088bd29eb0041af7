package hostfuncs

import (
	"encoding/json"
)

// ErrorResponse is the structured error returned to callers as JSON.
// Callers get a parseable error instead of a trap or a dropped call.
type ErrorResponse struct {
	// Error is a machine-readable error type identifier (e.g., "VALIDATION_ERROR", "INTERNAL_ERROR").
	Error string `json:"error"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Code is a numeric error code (e.g., 400, 500).
	Code int `json:"code"`
}

// ToJSON serializes the ErrorResponse to JSON bytes.
// Returns nil if serialization fails.
func (e ErrorResponse) ToJSON() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	return data
}

// ParseErrorResponse reports whether data is an ErrorResponse and decodes it.
// Normal responses never carry a non-empty "error" field.
func ParseErrorResponse(data []byte) (ErrorResponse, bool) {
	var resp ErrorResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return ErrorResponse{}, false
	}
	if resp.Error == "" || resp.Code == 0 {
		return ErrorResponse{}, false
	}
	return resp, true
}

// NewValidationError creates an error response for bad input (e.g., malformed JSON).
func NewValidationError(message string) ErrorResponse {
	return ErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Code:    400,
	}
}

// NewNotFoundError creates an error response for unknown handler names.
func NewNotFoundError(name string) ErrorResponse {
	return ErrorResponse{
		Error:   "NOT_FOUND",
		Message: "unknown function: " + name,
		Code:    404,
	}
}

// NewInternalError creates an error response for unexpected failures.
func NewInternalError(message string) ErrorResponse {
	return ErrorResponse{
		Error:   "INTERNAL_ERROR",
		Message: message,
		Code:    500,
	}
}

// NewPanicError creates an error response for recovered panics.
func NewPanicError(panicValue any) ErrorResponse {
	var msg string
	if err, ok := panicValue.(error); ok {
		msg = err.Error()
	} else if s, ok := panicValue.(string); ok {
		msg = s
	} else {
		msg = "panic recovered"
	}
	return ErrorResponse{
		Error:   "INTERNAL_ERROR",
		Message: "panic: " + msg,
		Code:    500,
	}
}

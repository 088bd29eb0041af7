// Package errors provides domain-specific error types for the module.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/reglet-dev/doublecount/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is implemented by error types that can describe themselves
// as a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ErrUnknownExport is returned when an export or variant name is not in the
// registration table.
var ErrUnknownExport = stdErrors.New("unknown export")

// ToErrorDetail converts a Go error to our structured ErrorDetail.
// Errors joined with errors.Join report the first error and list every
// message under Details["errors"]. A DetailedError wrapped with a message
// prefix is reported as that prefix, with the typed detail as Wrapped.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) > 0 {
			first := *ToErrorDetail(errs[0])
			if len(errs) == 1 {
				return &first
			}
			msgs := make([]string, len(errs))
			for i, err := range errs {
				msgs[i] = err.Error()
			}
			return first.WithDetails(map[string]any{"errors": msgs})
		}
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		inner := de.ToErrorDetail()
		prefix, wrapped := strings.CutSuffix(err.Error(), ": "+de.Error())
		if !wrapped {
			return inner
		}
		outer := entities.NewErrorDetail(inner.Type, prefix)
		outer.Wrapped = inner
		return outer
	}

	if stdErrors.Is(err, ErrUnknownExport) {
		return entities.NewErrorDetail("not_found", err.Error())
	}

	return entities.NewErrorDetail("internal", err.Error())
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("config", e.Error()).WithCode(e.Field)
}

// ExportError represents a failure to register or resolve an export.
type ExportError struct {
	Err    error
	Module string
	Export string
}

func (e *ExportError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("module %s: export %q: %v", e.Module, e.Export, e.Err)
	}
	return fmt.Sprintf("export %q: %v", e.Export, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ExportError) ToErrorDetail() *entities.ErrorDetail {
	errType := "validation"
	if stdErrors.Is(e.Err, ErrUnknownExport) {
		errType = "not_found"
	}
	return entities.NewErrorDetail(errType, e.Error()).WithCode(e.Export)
}

// SchemaError represents a schema generation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("schema", e.Error()).WithCode(e.Type)
}

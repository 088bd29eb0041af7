package hostfuncs

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// validate is shared by all JSON handlers; validator caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// HostFunc is a generic function signature for host functions.
// It accepts a context and a typed request, and returns a typed response.
type HostFunc[Req any, Resp any] func(context.Context, Req) Resp

// ByteHandler is a function that accepts raw bytes (JSON) and returns raw bytes (JSON).
// This is the common interface that WASM runtimes can easily use.
type ByteHandler func(context.Context, []byte) ([]byte, error)

// NewJSONHandler wraps a typed HostFunc into a ByteHandler.
//
// Requests that fail to decode, or whose struct fails its `validate` tags,
// are answered with a VALIDATION_ERROR ErrorResponse and never reach fn.
//
// Usage:
//
//	count := hostfuncs.NewJSONHandler(func(ctx context.Context, req entities.CountRequest) entities.CountResponse {
//	    return entities.CountResponse{Total: doubles.Count(*req.Val)}
//	})
func NewJSONHandler[Req any, Resp any](fn HostFunc[Req, Resp]) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req Req
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewValidationError(fmt.Sprintf("failed to unmarshal request: %v", err)).ToJSON(), nil
		}

		if isStruct(req) {
			if err := validate.StructCtx(ctx, req); err != nil {
				return NewValidationError(fmt.Sprintf("invalid request: %v", err)).ToJSON(), nil
			}
		}

		resp := fn(ctx, req)

		respBytes, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return respBytes, nil
	}
}

// isStruct reports whether v is a struct value. Pointer requests are not
// validated since a JSON null leaves them nil.
func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	return t != nil && t.Kind() == reflect.Struct
}

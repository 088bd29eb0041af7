package hostfuncs

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	domainErrors "github.com/reglet-dev/doublecount/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_Empty(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Empty(t, reg.Names())
}

func TestNewRegistry_WithByteHandler(t *testing.T) {
	echoHandler := func(ctx context.Context, payload []byte) ([]byte, error) {
		return payload, nil
	}

	reg, err := NewRegistry(
		WithByteHandler("echo", echoHandler),
	)
	require.NoError(t, err)

	assert.True(t, reg.Has("echo"))
	assert.False(t, reg.Has("nonexistent"))
	assert.Equal(t, []string{"echo"}, reg.Names())
}

func TestNewRegistry_DuplicateHandler(t *testing.T) {
	handler := func(ctx context.Context, payload []byte) ([]byte, error) {
		return nil, nil
	}

	_, err := NewRegistry(
		WithByteHandler("count_doubles", handler),
		WithByteHandler("count_doubles", handler), // duplicate
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate handler name")

	var exportErr *domainErrors.ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, "count_doubles", exportErr.Export)
}

func TestNewRegistry_ReportsAllErrors(t *testing.T) {
	handler := func(ctx context.Context, payload []byte) ([]byte, error) {
		return nil, nil
	}

	_, err := NewRegistry(
		WithByteHandler("", handler),
		WithByteHandler("nil_handler", nil),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
	assert.Contains(t, err.Error(), "cannot be nil")
}

func TestNewRegistry_EmptyName(t *testing.T) {
	handler := func(ctx context.Context, payload []byte) ([]byte, error) {
		return nil, nil
	}

	_, err := NewRegistry(
		WithByteHandler("", handler),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestHandlerRegistry_Invoke(t *testing.T) {
	echoHandler := func(ctx context.Context, payload []byte) ([]byte, error) {
		return append([]byte("echo:"), payload...), nil
	}

	reg, err := NewRegistry(
		WithByteHandler("echo", echoHandler),
	)
	require.NoError(t, err)

	t.Run("found handler", func(t *testing.T) {
		resp, err := reg.Invoke(context.Background(), "echo", []byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, "echo:hello", string(resp))
	})

	t.Run("not found handler", func(t *testing.T) {
		resp, err := reg.Invoke(context.Background(), "unknown", []byte("test"))
		require.NoError(t, err)

		var errResp ErrorResponse
		require.NoError(t, json.Unmarshal(resp, &errResp))
		assert.Equal(t, "NOT_FOUND", errResp.Error)
		assert.Equal(t, 404, errResp.Code)
		assert.Contains(t, errResp.Message, "unknown")
	})
}

func TestHandlerRegistry_MaxRequestSize(t *testing.T) {
	echoHandler := func(ctx context.Context, payload []byte) ([]byte, error) {
		return payload, nil
	}

	reg, err := NewRegistry(
		WithMaxRequestSize(8),
		WithByteHandler("echo", echoHandler),
	)
	require.NoError(t, err)
	assert.Equal(t, 8, reg.MaxRequestSize())

	resp, err := reg.Invoke(context.Background(), "echo", []byte("12345678"))
	require.NoError(t, err)
	assert.Equal(t, "12345678", string(resp))

	resp, err = reg.Invoke(context.Background(), "echo", []byte(strings.Repeat("x", 9)))
	require.NoError(t, err)
	errResp, ok := ParseErrorResponse(resp)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Error)
	assert.Contains(t, errResp.Message, "exceeds maximum")
}

func TestHandlerRegistry_DefaultMaxRequestSize(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxRequestSize, reg.MaxRequestSize())

	_, err = NewRegistry(WithMaxRequestSize(-1))
	require.Error(t, err)
}

func TestHandlerRegistry_Names_Sorted(t *testing.T) {
	handler := func(ctx context.Context, payload []byte) ([]byte, error) {
		return nil, nil
	}

	reg, err := NewRegistry(
		WithByteHandler("zebra", handler),
		WithByteHandler("alpha", handler),
		WithByteHandler("middle", handler),
	)
	require.NoError(t, err)

	names := reg.Names()
	assert.Equal(t, []string{"alpha", "middle", "zebra"}, names)
}

func TestHandlerRegistry_Invoke_SetsHostContext(t *testing.T) {
	var capturedName string
	handler := func(ctx context.Context, payload []byte) ([]byte, error) {
		if hc, ok := ctx.(HostContext); ok {
			capturedName = hc.FunctionName()
		}
		return nil, nil
	}

	reg, err := NewRegistry(
		WithByteHandler("test_func", handler),
	)
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "test_func", nil)
	require.NoError(t, err)
	assert.Equal(t, "test_func", capturedName)
}

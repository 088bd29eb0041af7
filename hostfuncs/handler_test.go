package hostfuncs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONHandler(t *testing.T) {
	called := 0
	handler := NewJSONHandler(func(ctx context.Context, req echoReq) echoResp {
		called++
		return echoResp{Output: "echo: " + req.Input}
	})

	t.Run("success", func(t *testing.T) {
		reqBytes, err := json.Marshal(echoReq{Input: "hello"})
		require.NoError(t, err)

		respBytes, err := handler(context.Background(), reqBytes)
		require.NoError(t, err)

		var resp echoResp
		require.NoError(t, json.Unmarshal(respBytes, &resp))
		assert.Equal(t, "echo: hello", resp.Output)
	})

	t.Run("invalid JSON returns ErrorResponse", func(t *testing.T) {
		before := called
		respBytes, err := handler(context.Background(), []byte("{invalid-json"))
		require.NoError(t, err)

		errResp, ok := ParseErrorResponse(respBytes)
		require.True(t, ok)
		assert.Equal(t, "VALIDATION_ERROR", errResp.Error)
		assert.Equal(t, 400, errResp.Code)
		assert.Contains(t, errResp.Message, "unmarshal")
		assert.Equal(t, before, called, "handler must not run")
	})

	t.Run("wrong field type returns ErrorResponse", func(t *testing.T) {
		respBytes, err := handler(context.Background(), []byte(`{"input": 42}`))
		require.NoError(t, err)

		errResp, ok := ParseErrorResponse(respBytes)
		require.True(t, ok)
		assert.Equal(t, "VALIDATION_ERROR", errResp.Error)
	})

	t.Run("failed validation returns ErrorResponse", func(t *testing.T) {
		respBytes, err := handler(context.Background(), []byte(`{}`))
		require.NoError(t, err)

		errResp, ok := ParseErrorResponse(respBytes)
		require.True(t, ok)
		assert.Equal(t, "VALIDATION_ERROR", errResp.Error)
		assert.Contains(t, errResp.Message, "invalid request")
	})
}

func TestNewJSONHandler_NonStructRequest(t *testing.T) {
	handler := NewJSONHandler(func(ctx context.Context, s string) int {
		return len(s)
	})

	resp, err := handler(context.Background(), []byte(`"abcd"`))
	require.NoError(t, err)
	assert.Equal(t, "4", string(resp))
}

func TestNewJSONHandler_MarshalFailure(t *testing.T) {
	handler := NewJSONHandler(func(ctx context.Context, req echoReq) chan int {
		return make(chan int)
	})

	_, err := handler(context.Background(), []byte(`{"input":"x"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to marshal response")
}

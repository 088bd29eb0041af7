package hostfuncs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoReq struct {
	Input string `json:"input" validate:"required"`
}

type echoResp struct {
	Output string `json:"output"`
}

func constHandler(body string) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		return []byte(body), nil
	}
}

func TestStaticBundle(t *testing.T) {
	bundle := StaticBundle{
		"a": constHandler(`"a"`),
		"b": constHandler(`"b"`),
	}

	assert.Len(t, bundle.Handlers(), 2)
	assert.Contains(t, bundle.Handlers(), "a")
}

func TestCombine(t *testing.T) {
	first := StaticBundle{"a": constHandler(`1`), "shared": constHandler(`"first"`)}
	second := StaticBundle{"b": constHandler(`2`), "shared": constHandler(`"second"`)}

	handlers := Combine(first, second).Handlers()
	assert.Len(t, handlers, 3)

	resp, err := handlers["shared"](context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, `"second"`, string(resp))
}

func TestWithBundle(t *testing.T) {
	reg, err := NewRegistry(
		WithBundle(StaticBundle{"a": constHandler(`1`), "b": constHandler(`2`)}),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, reg.Names())
	assert.Equal(t, 2, reg.Len())
}

func TestWithBundle_DuplicateAcrossBundles(t *testing.T) {
	_, err := NewRegistry(
		WithBundle(StaticBundle{"a": constHandler(`1`)}),
		WithBundle(StaticBundle{"a": constHandler(`2`)}),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate handler name")
}

func TestWithHandler(t *testing.T) {
	reg, err := NewRegistry(
		WithHandler("echo", func(ctx context.Context, req echoReq) echoResp {
			return echoResp{Output: "echo: " + req.Input}
		}),
	)
	require.NoError(t, err)

	payload, err := json.Marshal(echoReq{Input: "hi"})
	require.NoError(t, err)

	resp, err := reg.Invoke(context.Background(), "echo", payload)
	require.NoError(t, err)

	var out echoResp
	require.NoError(t, json.Unmarshal(resp, &out))
	assert.Equal(t, "echo: hi", out.Output)
}

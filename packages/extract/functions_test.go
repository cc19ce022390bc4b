package extract

import (
	"context"
	"testing"

	"github.com/abdul-hamid-achik/respext/packages/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitions(t *testing.T) {
	e, _ := newTestExtractor(newTestHost())
	defs := e.Definitions()

	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
		require.NotNil(t, d.Render)
		require.NotEmpty(t, d.Args)
		assert.Equal(t, ArgRequest, d.Args[0].Name)
	}
	assert.Equal(t, []string{FuncOAuth2, FuncResponse, FuncBody, FuncDispatch}, names)
}

func TestRegistry_Call(t *testing.T) {
	ctx := context.Background()
	host := newTestHost()
	e, _ := newTestExtractor(host)
	r := NewRegistry(e.Definitions()...)

	t.Run("positional arguments", func(t *testing.T) {
		result, err := r.Call(ctx, FuncOAuth2, []string{"req_oauth", "$.accessToken"}, selector.PurposePreview)
		require.NoError(t, err)
		assert.Equal(t, "abc123", result.Value)
	})

	t.Run("default filter is root", func(t *testing.T) {
		result, err := r.Call(ctx, FuncBody, []string{"req_text"}, selector.PurposePreview)
		require.NoError(t, err)
		assert.Equal(t, "plain text body", result.Value)
	})

	t.Run("dispatcher routes by attribute", func(t *testing.T) {
		result, err := r.Call(ctx, FuncDispatch, []string{"req_json", "response", "$.statusMessage", "never"}, selector.PurposeSend)
		require.NoError(t, err)
		assert.Equal(t, "OK", result.Value)
	})

	t.Run("dispatcher defaults to oauth2", func(t *testing.T) {
		result, err := r.Call(ctx, FuncDispatch, []string{"req_oauth", "", "$.accessToken"}, selector.PurposeSend)
		require.NoError(t, err)
		assert.Equal(t, "abc123", result.Value)
	})

	t.Run("invalid behavior", func(t *testing.T) {
		result, err := r.Call(ctx, FuncResponse, []string{"req_json", "$", "sometimes"}, selector.PurposeSend)
		require.NoError(t, err)
		assert.False(t, result.OK)
		assert.ErrorIs(t, result.Err, selector.ErrInvalidBehavior)
	})

	t.Run("default behavior override", func(t *testing.T) {
		sends := host.sends
		result, err := r.Call(ctx, FuncResponse, []string{"req_json", "$.statusCode"}, selector.PurposePreview,
			WithDefault(ArgBehavior, string(selector.Never)))
		require.NoError(t, err)
		assert.Equal(t, "200", result.Value)
		assert.Equal(t, sends, host.sends)

		result, err = r.Call(ctx, FuncResponse, []string{"req_json", "$.statusCode", "sometimes"}, selector.PurposePreview,
			WithDefault(ArgBehavior, string(selector.Never)))
		require.NoError(t, err)
		assert.ErrorIs(t, result.Err, selector.ErrInvalidBehavior)

		result, err = r.Call(ctx, FuncResponse, []string{"req_json"}, selector.PurposePreview,
			WithDefault(ArgBehavior, "sometimes"))
		require.NoError(t, err)
		assert.ErrorIs(t, result.Err, selector.ErrInvalidBehavior)

		result, err = r.Call(ctx, FuncResponse, []string{"req_json", "$.statusCode"}, selector.PurposePreview,
			WithDefault(ArgBehavior, string(selector.Always)))
		require.NoError(t, err)
		assert.Equal(t, "201", result.Value)
		assert.Equal(t, sends+1, host.sends)
	})

	t.Run("unknown function", func(t *testing.T) {
		_, err := r.Call(ctx, "responseExtensions.cookies", nil, selector.PurposeSend)
		assert.Error(t, err)
	})

	t.Run("too many arguments", func(t *testing.T) {
		_, err := r.Call(ctx, FuncOAuth2, []string{"a", "b", "c"}, selector.PurposeSend)
		assert.Error(t, err)
	})

	assert.Equal(t, []string{FuncDispatch, FuncBody, FuncOAuth2, FuncResponse}, r.Names())
}

package template

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/respext/packages/extract"
	"github.com/abdul-hamid-achik/respext/packages/logging"
	"github.com/abdul-hamid-achik/respext/packages/model"
	"github.com/abdul-hamid-achik/respext/packages/store"
)

func newRegistry(t *testing.T) *extract.Registry {
	t.Helper()
	ctx := context.Background()

	s := store.NewMemoryStore()
	require.NoError(t, s.SaveRequest(ctx, &model.Request{
		ID:     "req_oauth",
		Method: "GET",
		URL:    "https://api.example.com",
		Authentication: &model.Authentication{
			Type:        model.AuthOAuth2,
			AccessToken: "secret-token",
		},
	}))
	require.NoError(t, s.SaveRequest(ctx, &model.Request{ID: "req_api", Method: "GET", URL: "https://api.example.com/items"}))
	require.NoError(t, s.SaveResponse(ctx, &model.Response{
		ID:          "resp_1",
		RequestID:   "req_api",
		Status:      404,
		ContentType: "application/json",
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}))

	e := extract.New(store.NewHost(s, nil), nil)
	return extract.NewRegistry(e.Definitions()...)
}

func TestRender_ExtensionFunctions(t *testing.T) {
	r := New(newRegistry(t))

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "oauth2 access token",
			input:    "Bearer {{ responseExtensions.oauth2('req_oauth', '$.accessToken') }}",
			expected: "Bearer secret-token",
		},
		{
			name:     "response status with double quotes",
			input:    `status={{responseExtensions.response("req_api", "$.statusCode", "never")}}`,
			expected: "status=404",
		},
		{
			name:     "dispatch by attribute",
			input:    "{{ responseExtensions('req_api', 'response', '$.contentType', 'never') }}",
			expected: "application/json",
		},
		{
			name:     "default filter renders the root",
			input:    "{{ responseExtensions.oauth2('req_oauth') }}",
			expected: `{"type":"OAuth2Token","parentId":"req_oauth"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Contains(t, out, tt.expected)
		})
	}
}

func TestRender_AbsentValueIsEmpty(t *testing.T) {
	r := New(newRegistry(t))

	out, err := r.Render(context.Background(), "[{{ responseExtensions.oauth2('req_oauth', '$.refreshToken') }}]")
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestRender_FailedExtractionReportsError(t *testing.T) {
	r := New(newRegistry(t))

	out, err := r.Render(context.Background(), "a{{ responseExtensions.oauth2('req_api') }}b")
	assert.Equal(t, "ab", out)
	assert.ErrorIs(t, err, extract.ErrAuthMismatch)
}

func TestRender_DefaultBehavior(t *testing.T) {
	input := "{{ responseExtensions.response('req_api', '$.statusCode') }}"

	out, err := New(newRegistry(t), WithBehavior("never")).Render(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "404", out)

	// the host cannot send, so forcing a send leaves no value
	out, err = New(newRegistry(t), WithBehavior("always")).Render(context.Background(), input)
	assert.Equal(t, "", out)
	assert.ErrorIs(t, err, extract.ErrSendFailed)

	out, err = New(newRegistry(t), WithBehavior("always")).Render(context.Background(),
		"{{ responseExtensions.response('req_api', '$.statusCode', 'never') }}")
	require.NoError(t, err)
	assert.Equal(t, "404", out)
}

func TestRender_UnknownFunctionLeftIntact(t *testing.T) {
	rec := logging.NewRecorder()
	r := New(newRegistry(t), WithLogger(rec.Logger()))

	input := "x {{ nosuch.func('a') }} y"
	out, err := r.Render(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, input, out)
	assert.Contains(t, rec.Messages(logging.LevelWarn), "unresolved function call")
}

func TestRender_TooManyArguments(t *testing.T) {
	r := New(newRegistry(t))

	input := "{{ responseExtensions.oauth2('a', 'b', 'c') }}"
	out, err := r.Render(context.Background(), input)
	assert.Error(t, err)
	assert.Equal(t, input, out)
}

func TestRender_VariablesAndEnv(t *testing.T) {
	t.Setenv("RESPEXT_TEST_HOST", "example.com")
	r := New(nil, WithVariables(map[string]string{"version": "v2"}))

	out, err := r.Render(context.Background(), "https://{{$RESPEXT_TEST_HOST}}/{{version}}/{{missing}}")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/v2/{{missing}}", out)
}

func TestRender_Builtins(t *testing.T) {
	r := New(nil)

	out, err := r.Render(context.Background(), "{{uuid()}}")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f-]{36}$`), out)

	out, err = r.Render(context.Background(), "{{ base64('user:pass') }}|{{ urlEncode('a b') }}|{{ base64Decode('aGk=') }}")
	require.NoError(t, err)
	assert.Equal(t, "dXNlcjpwYXNz|a+b|hi", out)
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"'a'", []string{"a"}},
		{`'a', "b,c", d`, []string{"a", "b,c", "d"}},
		{"'req', ''", []string{"req", ""}},
		{"'$.items[0].id'", []string{"$.items[0].id"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseArgs(tt.input))
		})
	}
}

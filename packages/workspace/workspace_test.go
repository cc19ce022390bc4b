package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/respext/packages/model"
	"github.com/abdul-hamid-achik/respext/packages/store"
)

const sampleWorkspace = `
workspace: billing
requests:
  - id: req_token
    name: Token
    method: post
    url: https://api.example.com/token
    authentication:
      type: oauth2
      tokenUrl: https://auth.example.com/token
      clientId: cli
      clientSecret: sec
      scopes: [read, write]
  - name: List invoices
    url: https://api.example.com/invoices
    headers:
      - name: Accept
        value: application/json
    responses:
      - status: 200
        statusText: OK
        headers:
          - name: Content-Type
            value: application/json
        elapsed: 42
        body: '{"invoices":[{"id":"inv_1"}]}'
        createdAt: 2024-03-01T10:00:00Z
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sampleWorkspace))
	require.NoError(t, err)

	assert.Equal(t, "billing", f.Workspace)
	require.Len(t, f.Requests, 2)
	assert.Equal(t, "req_token", f.Requests[0].ID)
	require.NotNil(t, f.Requests[0].Authentication)
	assert.Equal(t, model.AuthOAuth2, f.Requests[0].Authentication.Type)
	assert.Equal(t, []string{"read", "write"}, f.Requests[0].Authentication.Scopes)
	require.Len(t, f.Requests[1].Responses, 1)
	assert.Equal(t, int64(42), f.Requests[1].Responses[0].Elapsed)
	assert.Equal(t, 2024, f.Requests[1].Responses[0].CreatedAt.Year())
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing requests", doc: "workspace: x\n"},
		{name: "missing url", doc: "requests:\n  - name: a\n"},
		{name: "bad method", doc: "requests:\n  - url: http://x\n    method: FETCH\n"},
		{name: "bad auth type", doc: "requests:\n  - url: http://x\n    authentication:\n      type: kerberos\n"},
		{name: "status out of range", doc: "requests:\n  - url: http://x\n    responses:\n      - status: 42\n"},
		{name: "unknown field", doc: "requests:\n  - url: http://x\n    verb: GET\n"},
		{name: "empty", doc: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.NotEmpty(t, verr.Problems)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("requests: [\n"))
	assert.ErrorContains(t, err, "failed to parse workspace")
}

func TestLoad_DefaultsWorkspaceName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payments.yaml")
	require.NoError(t, os.WriteFile(path, []byte("requests:\n  - url: https://api.example.com\n"), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "payments", f.Workspace)

	require.NoError(t, os.WriteFile(path, []byte("requests: 3\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, path)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	bodyDir := t.TempDir()
	s := store.NewMemoryStore()

	f, err := Parse([]byte(sampleWorkspace))
	require.NoError(t, err)

	result, err := Import(ctx, f, s, bodyDir)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Requests: 2, Responses: 1}, result)

	token, err := s.GetRequest(ctx, "req_token")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "POST", token.Method)
	assert.Equal(t, "billing", token.WorkspaceID)

	list, err := s.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	var invoices *model.Request
	for _, r := range list {
		if r.Name == "List invoices" {
			invoices = r
		}
	}
	require.NotNil(t, invoices)
	assert.Equal(t, "GET", invoices.Method)

	responses, err := s.FindResponses(ctx, invoices.ID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "application/json", responses[0].ContentType)
	assert.Equal(t, "https://api.example.com/invoices", responses[0].URL)
	assert.Equal(t, int64(29), responses[0].Size)

	body, err := os.ReadFile(responses[0].BodyPath)
	require.NoError(t, err)
	assert.Equal(t, `{"invoices":[{"id":"inv_1"}]}`, string(body))
}

func TestImport_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	f, err := Parse([]byte(sampleWorkspace))
	require.NoError(t, err)

	_, err = Import(ctx, f, s, t.TempDir())
	require.NoError(t, err)

	// token state obtained between imports survives
	req, err := s.GetRequest(ctx, "req_token")
	require.NoError(t, err)
	req.Authentication.AccessToken = "live-token"
	require.NoError(t, s.SaveRequest(ctx, req))

	f, err = Parse([]byte(sampleWorkspace))
	require.NoError(t, err)
	_, err = Import(ctx, f, s, t.TempDir())
	require.NoError(t, err)

	list, err := s.ListRequests(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	req, err = s.GetRequest(ctx, "req_token")
	require.NoError(t, err)
	assert.Equal(t, "live-token", req.Authentication.AccessToken)

	for _, r := range list {
		responses, err := s.FindResponses(ctx, r.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(responses), 1)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workspace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("requests: []\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, nil, func() { calls.Add(1) })
	}()

	// give the watcher time to start
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("requests: []\n# edit\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

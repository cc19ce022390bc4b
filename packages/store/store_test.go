package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/respext/packages/model"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore("sqlite://" + filepath.Join(t.TempDir(), "respext.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStore_Requests(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			missing, err := s.GetRequest(ctx, "nope")
			require.NoError(t, err)
			assert.Nil(t, missing)

			req := &model.Request{
				ID:      "req_1",
				Name:    "Login",
				Method:  "POST",
				URL:     "https://api.example.com/login",
				Headers: []model.Header{{Name: "Accept", Value: "application/json"}, {Name: "X-Tag", Value: "a"}, {Name: "X-Tag", Value: "b"}},
				Body:    `{"user":"alice"}`,
				Authentication: &model.Authentication{
					Type:        model.AuthOAuth2,
					TokenURL:    "https://auth.example.com/token",
					Scopes:      []string{"read"},
					AccessToken: "abc",
					ExpiresAt:   1700000000000,
				},
			}
			require.NoError(t, s.SaveRequest(ctx, req))
			assert.False(t, req.CreatedAt.IsZero())

			got, err := s.GetRequest(ctx, "req_1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "Login", got.Name)
			assert.Equal(t, req.Headers, got.Headers)
			assert.Equal(t, req.Authentication, got.Authentication)
			assert.Equal(t, req.CreatedAt.UnixNano(), got.CreatedAt.UnixNano())

			// returned values are copies
			got.Authentication.AccessToken = "changed"
			again, err := s.GetRequest(ctx, "req_1")
			require.NoError(t, err)
			assert.Equal(t, "abc", again.Authentication.AccessToken)

			generated := &model.Request{Method: "GET", URL: "https://api.example.com/items"}
			require.NoError(t, s.SaveRequest(ctx, generated))
			assert.NotEmpty(t, generated.ID)

			list, err := s.ListRequests(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 2)
		})
	}
}

func TestStore_SaveRequestUpdates(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			req := &model.Request{ID: "r", Method: "GET", URL: "https://a.example.com"}
			require.NoError(t, s.SaveRequest(ctx, req))
			created := req.CreatedAt

			req.URL = "https://b.example.com"
			req.Authentication = nil
			require.NoError(t, s.SaveRequest(ctx, req))

			got, err := s.GetRequest(ctx, "r")
			require.NoError(t, err)
			assert.Equal(t, "https://b.example.com", got.URL)
			assert.Nil(t, got.Authentication)
			assert.Equal(t, created.UnixNano(), got.CreatedAt.UnixNano())
		})
	}
}

func TestStore_ResponsesNewestFirst(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

			for i, id := range []string{"old", "newest", "middle"} {
				offset := map[string]time.Duration{"old": 0, "newest": 2 * time.Second, "middle": time.Second}[id]
				require.NoError(t, s.SaveResponse(ctx, &model.Response{
					ID:        id,
					RequestID: "req_1",
					Status:    200 + i,
					Headers:   []model.Header{{Name: "Content-Type", Value: "application/json"}},
					CreatedAt: base.Add(offset),
				}))
			}
			require.NoError(t, s.SaveResponse(ctx, &model.Response{ID: "other", RequestID: "req_2", Status: 500, CreatedAt: base}))

			responses, err := s.FindResponses(ctx, "req_1")
			require.NoError(t, err)
			require.Len(t, responses, 3)
			assert.Equal(t, "newest", responses[0].ID)
			assert.Equal(t, "middle", responses[1].ID)
			assert.Equal(t, "old", responses[2].ID)
			assert.Equal(t, "application/json", responses[0].Header("content-type"))

			none, err := s.FindResponses(ctx, "req_missing")
			require.NoError(t, err)
			assert.Empty(t, none)

			n, err := s.DeleteResponses(ctx, "req_1")
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			responses, err = s.FindResponses(ctx, "req_1")
			require.NoError(t, err)
			assert.Empty(t, responses)

			others, err := s.FindResponses(ctx, "req_2")
			require.NoError(t, err)
			assert.Len(t, others, 1)
		})
	}
}

func TestParseConnectionString(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "sqlite://data/respext.db", want: "data/respext.db"},
		{in: "sqlite:./respext.db", want: "./respext.db"},
		{in: "respext.db", want: "respext.db"},
		{in: ":memory:", want: ":memory:"},
		{in: "", wantErr: true},
		{in: "postgres://localhost/db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseConnectionString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen(t *testing.T) {
	s, err := Open("memory")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &SQLiteStore{}, s)

	_, err = Open("mysql://localhost/db")
	assert.Error(t, err)
}

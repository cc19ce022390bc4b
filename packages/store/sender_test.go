package store

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/respext/packages/extract"
	"github.com/abdul-hamid-achik/respext/packages/logging"
	"github.com/abdul-hamid-achik/respext/packages/model"
	"github.com/abdul-hamid-achik/respext/packages/selector"
)

func TestSender_Send(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(nethttp.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7,"tags":["a","b"]}`))
	}))
	defer server.Close()

	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.SaveRequest(ctx, &model.Request{
		ID:      "req_1",
		Method:  "POST",
		URL:     server.URL + "/items",
		Headers: []model.Header{{Name: "X-Test", Value: "yes"}},
		Body:    `{"name":"x"}`,
	}))

	bodyDir := filepath.Join(t.TempDir(), "bodies")
	rec := logging.NewRecorder()
	sender := NewSender(s, bodyDir, WithRate(100), WithLogger(rec.Logger()))

	resp, err := sender.Send(ctx, "req_1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 201, resp.Status)
	assert.Equal(t, "Created", resp.StatusText)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.Equal(t, int64(25), resp.Size)
	assert.Equal(t, filepath.Join(bodyDir, resp.ID), resp.BodyPath)

	body, err := os.ReadFile(resp.BodyPath)
	require.NoError(t, err)
	assert.Equal(t, `{"id":7,"tags":["a","b"]}`, string(body))

	stored, err := s.FindResponses(ctx, "req_1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, resp.ID, stored[0].ID)

	assert.Contains(t, rec.Messages(logging.LevelInfo), "request sent")
}

func TestSender_UnknownRequest(t *testing.T) {
	sender := NewSender(NewMemoryStore(), t.TempDir())
	_, err := sender.Send(context.Background(), "missing")
	assert.ErrorIs(t, err, selector.ErrRequestNotFound)
}

func TestSender_NetworkError(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.SaveRequest(ctx, &model.Request{ID: "r", Method: "GET", URL: "ftp://example.com"}))

	_, err := NewSender(s, t.TempDir()).Send(ctx, "r")
	assert.ErrorContains(t, err, "GET ftp://example.com: ")

	responses, _ := s.FindResponses(ctx, "r")
	assert.Empty(t, responses)
}

func TestHost_SendFailureMessage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.SaveRequest(ctx, &model.Request{ID: "r", Method: "GET", URL: "ftp://example.com"}))

	e := extract.New(NewHost(s, NewSender(s, t.TempDir())), nil)
	res := e.Response(ctx, extract.Args{RequestID: "r", Behavior: selector.Always, Purpose: selector.PurposePreview})

	require.ErrorIs(t, res.Err, extract.ErrSendFailed)
	assert.Equal(t, 1, strings.Count(res.Err.Error(), "failed to send request"))
	assert.Contains(t, res.Err.Error(), "failed to send request r: GET ftp://example.com: ")
}

func TestSender_OAuth2(t *testing.T) {
	tokenCalls := 0
	tokens := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		tokenCalls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600,"refresh_token":"ref-1","id_token":"id-1"}`))
	}))
	defer tokens.Close()

	api := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(nethttp.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer api.Close()

	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.SaveRequest(ctx, &model.Request{
		ID:     "req_oauth",
		Method: "GET",
		URL:    api.URL,
		Authentication: &model.Authentication{
			Type:         model.AuthOAuth2,
			TokenURL:     tokens.URL,
			ClientID:     "client",
			ClientSecret: "secret",
			Error:        "stale_error",
		},
	}))

	sender := NewSender(s, t.TempDir())
	resp, err := sender.Send(ctx, "req_oauth")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)

	req, err := s.GetRequest(ctx, "req_oauth")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", req.Authentication.AccessToken)
	assert.Equal(t, "ref-1", req.Authentication.RefreshToken)
	assert.Equal(t, "id-1", req.Authentication.IdentityToken)
	assert.NotZero(t, req.Authentication.ExpiresAt)
	assert.Empty(t, req.Authentication.Error)

	// the stored token is reused
	_, err = sender.Send(ctx, "req_oauth")
	require.NoError(t, err)
	assert.Equal(t, 1, tokenCalls)
}

func TestSender_OAuth2Error(t *testing.T) {
	tokens := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"unknown client","error_uri":"https://auth.example.com/help"}`))
	}))
	defer tokens.Close()

	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.SaveRequest(ctx, &model.Request{
		ID:     "req_oauth",
		Method: "GET",
		URL:    "https://api.example.com",
		Authentication: &model.Authentication{
			Type:         model.AuthOAuth2,
			TokenURL:     tokens.URL,
			ClientID:     "client",
			ClientSecret: "wrong",
		},
	}))

	_, err := NewSender(s, t.TempDir()).Send(ctx, "req_oauth")
	require.Error(t, err)

	req, err := s.GetRequest(ctx, "req_oauth")
	require.NoError(t, err)
	assert.Equal(t, "invalid_client", req.Authentication.Error)
	assert.Equal(t, "unknown client", req.Authentication.ErrorDescription)
	assert.Equal(t, "https://auth.example.com/help", req.Authentication.ErrorURI)
	assert.Empty(t, req.Authentication.AccessToken)
}

func TestHost_ExtractsAfterSend(t *testing.T) {
	api := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"items":[{"id":"first"},{"id":"second"}]}}`))
	}))
	defer api.Close()

	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.SaveRequest(ctx, &model.Request{ID: "req_1", Method: "GET", URL: api.URL}))

	host := NewHost(s, NewSender(s, t.TempDir()))
	e := extract.New(host, nil)

	res := e.Body(ctx, extract.Args{
		RequestID: "req_1",
		Filter:    "$.data.items[1].id",
		Purpose:   selector.PurposeSend,
	})
	require.True(t, res.OK, "%v", res.Err)
	assert.Equal(t, "second", res.Value)

	res = e.Response(ctx, extract.Args{RequestID: "req_1", Filter: "$.statusCode", Behavior: selector.Never})
	require.True(t, res.OK, "%v", res.Err)
	assert.Equal(t, "200", res.Value)
}

func TestHost_WithoutSender(t *testing.T) {
	host := NewHost(NewMemoryStore(), nil)
	err := host.SendRequest(context.Background(), "r")
	assert.True(t, errors.Is(err, ErrSendUnavailable))
}

func TestHost_ReadBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	host := NewHost(NewMemoryStore(), nil)
	b, err := host.ReadBody(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	_, err = host.ReadBody(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = host.ReadBody(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHost_ClearResponses(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewMemoryStore()

	path := filepath.Join(dir, "resp_1")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, s.SaveResponse(ctx, &model.Response{ID: "resp_1", RequestID: "r", Status: 200, BodyPath: path}))
	require.NoError(t, s.SaveResponse(ctx, &model.Response{ID: "resp_2", RequestID: "r", Status: 200, BodyPath: filepath.Join(dir, "gone")}))

	n, err := NewHost(s, nil).ClearResponses(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

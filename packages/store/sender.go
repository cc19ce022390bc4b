package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/respext/packages/auth/oauth2"
	"github.com/abdul-hamid-achik/respext/packages/http"
	"github.com/abdul-hamid-achik/respext/packages/logging"
	"github.com/abdul-hamid-achik/respext/packages/model"
	"github.com/abdul-hamid-achik/respext/packages/selector"
)

// Sender issues stored requests and records their responses.
type Sender struct {
	store   Store
	client  *http.Client
	bodyDir string
	limiter *rate.Limiter
	tokens  *oauth2.TokenCache
	logger  *slog.Logger
	now     func() time.Time
}

// SenderOption configures a Sender
type SenderOption func(*Sender)

// WithClient sets the HTTP client requests are sent with.
func WithClient(client *http.Client) SenderOption {
	return func(s *Sender) {
		s.client = client
	}
}

// WithRate limits sends to perSecond requests per second. Zero or less
// removes the limit.
func WithRate(perSecond float64) SenderOption {
	return func(s *Sender) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SenderOption {
	return func(s *Sender) {
		s.logger = logging.OrNop(logger)
	}
}

// NewSender creates a Sender writing response bodies below bodyDir.
func NewSender(store Store, bodyDir string, opts ...SenderOption) *Sender {
	s := &Sender{
		store:   store,
		client:  http.NewClient(),
		bodyDir: bodyDir,
		limiter: rate.NewLimiter(rate.Inf, 0),
		tokens:  oauth2.NewTokenCache(),
		logger:  logging.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send issues the request with the given id, stores the response and
// returns it.
func (s *Sender) Send(ctx context.Context, requestID string) (*model.Response, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: %s", selector.ErrRequestNotFound, requestID)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if req.Authentication.IsOAuth2() {
		if err := s.authorize(ctx, req); err != nil {
			return nil, err
		}
	}

	httpResp, err := s.client.Send(ctx, http.BuildRequest(req))
	if err != nil {
		s.logger.Warn("request failed", "request", req.ID, "url", req.URL, "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}

	resp := &model.Response{
		ID:          uuid.NewString(),
		RequestID:   req.ID,
		Status:      httpResp.StatusCode,
		StatusText:  httpResp.StatusText(),
		ContentType: httpResp.ContentType(),
		URL:         httpResp.URL,
		Headers:     httpResp.Headers,
		Elapsed:     httpResp.DurationMs(),
		Size:        int64(len(httpResp.Body)),
		CreatedAt:   s.now(),
	}

	bodyPath, err := s.writeBody(resp.ID, httpResp.Body)
	if err != nil {
		return nil, err
	}
	resp.BodyPath = bodyPath

	if err := s.store.SaveResponse(ctx, resp); err != nil {
		return nil, err
	}

	s.logger.Info("request sent",
		"request", req.ID,
		"method", req.Method,
		"url", req.URL,
		"status", resp.Status,
		"elapsed_ms", resp.Elapsed)

	return resp, nil
}

func (s *Sender) writeBody(responseID string, body []byte) (string, error) {
	if err := os.MkdirAll(s.bodyDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create body directory: %w", err)
	}
	path := filepath.Join(s.bodyDir, responseID)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write response body: %w", err)
	}
	return path, nil
}

// authorize makes sure req carries a usable OAuth2 access token and saves
// the token state, or the token endpoint's error, back into the request.
func (s *Sender) authorize(ctx context.Context, req *model.Request) error {
	auth := req.Authentication
	nowMs := s.now().UnixMilli()
	if auth.AccessToken != "" && (auth.ExpiresAt == 0 || auth.ExpiresAt > nowMs) {
		return nil
	}

	config, err := oauth2.ConfigFromAuthentication(auth)
	if err != nil {
		return err
	}
	provider := oauth2.NewProvider(config,
		oauth2.WithHTTPClient(s.client.HTTPClient()),
		oauth2.WithCache(s.tokens))

	var token *oauth2.Token
	if auth.RefreshToken != "" && auth.AccessToken != "" {
		token, err = provider.RefreshAccessToken(ctx, auth.RefreshToken)
	} else {
		token, err = provider.GetToken(ctx)
	}

	if err != nil {
		var tokenErr *oauth2.TokenError
		if !errors.As(err, &tokenErr) {
			return fmt.Errorf("failed to obtain oauth2 token for %s: %w", req.ID, err)
		}
		auth.AccessToken = ""
		auth.Error = tokenErr.Code
		auth.ErrorDescription = tokenErr.Description
		auth.ErrorURI = tokenErr.URI
		if saveErr := s.store.SaveRequest(ctx, req); saveErr != nil {
			return saveErr
		}
		s.logger.Warn("oauth2 token request rejected", "request", req.ID, "error", tokenErr.Code)
		return fmt.Errorf("failed to obtain oauth2 token for %s: %w", req.ID, err)
	}

	auth.AccessToken = token.AccessToken
	auth.RefreshToken = token.RefreshToken
	auth.IdentityToken = token.IDToken
	auth.ExpiresAt = 0
	if !token.ExpiresAt.IsZero() {
		auth.ExpiresAt = token.ExpiresAt.UnixMilli()
	}
	auth.Error = ""
	auth.ErrorDescription = ""
	auth.ErrorURI = ""

	s.logger.Debug("oauth2 token obtained", "request", req.ID, "expires_at", auth.ExpiresAt)
	return s.store.SaveRequest(ctx, req)
}

// Package oauth2 obtains OAuth2 tokens for requests using OAuth2 authentication.
package oauth2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/respext/packages/model"
)

// GrantType represents the OAuth2 grant type
type GrantType string

const (
	// ClientCredentials is the client_credentials grant type
	ClientCredentials GrantType = "client_credentials"
	// Password is the password (resource owner) grant type
	Password GrantType = "password"
	// RefreshToken is the refresh_token grant type
	RefreshToken GrantType = "refresh_token"
)

// Config holds OAuth2 configuration
type Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Username     string // For password grant
	Password     string // For password grant
	GrantType    GrantType
}

// Token represents an OAuth2 access token
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresAt    time.Time `json:"-"`
}

// IsExpired checks if the token is expired
func (t *Token) IsExpired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	// Add a small buffer (30 seconds) to account for clock skew
	return time.Now().Add(30 * time.Second).After(t.ExpiresAt)
}

// TokenError is an error response from the token endpoint (RFC 6749 5.2).
type TokenError struct {
	StatusCode  int
	Code        string `json:"error"`
	Description string `json:"error_description"`
	URI         string `json:"error_uri"`
}

func (e *TokenError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("token request failed: %s - %s", e.Code, e.Description)
	}
	return fmt.Sprintf("token request failed: %s", e.Code)
}

// Provider handles OAuth2 token acquisition
type Provider struct {
	config     *Config
	httpClient *http.Client
	cache      *TokenCache
}

// ProviderOption configures a Provider
type ProviderOption func(*Provider)

// WithHTTPClient sets the client used for token requests
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// WithCache sets the token cache, e.g. one shared between providers
func WithCache(cache *TokenCache) ProviderOption {
	return func(p *Provider) {
		p.cache = cache
	}
}

// NewProvider creates a new OAuth2 provider
func NewProvider(config *Config, opts ...ProviderOption) *Provider {
	p := &Provider{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: NewTokenCache(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ConfigFromAuthentication reads the OAuth2 settings of a request.
func ConfigFromAuthentication(auth *model.Authentication) (*Config, error) {
	if !auth.IsOAuth2() {
		return nil, fmt.Errorf("authentication is not oauth2")
	}
	if auth.TokenURL == "" {
		return nil, fmt.Errorf("oauth2 authentication requires a token URL")
	}

	config := &Config{
		TokenURL:     auth.TokenURL,
		ClientID:     auth.ClientID,
		ClientSecret: auth.ClientSecret,
		Scopes:       auth.Scopes,
		Username:     auth.Username,
		Password:     auth.Password,
		GrantType:    GrantType(auth.GrantType),
	}

	switch config.GrantType {
	case "":
		config.GrantType = ClientCredentials
	case ClientCredentials, Password:
	default:
		return nil, fmt.Errorf("unsupported OAuth2 grant type: %s", config.GrantType)
	}

	return config, nil
}

// GetToken retrieves a valid access token, fetching a new one if necessary
func (p *Provider) GetToken(ctx context.Context) (*Token, error) {
	if token := p.cache.Lookup(p.config); token != nil {
		return token, nil
	}

	token, err := p.fetchToken(ctx)
	if err != nil {
		return nil, err
	}

	p.cache.Store(p.config, token)

	return token, nil
}

func (p *Provider) fetchToken(ctx context.Context) (*Token, error) {
	data := url.Values{}
	switch p.config.GrantType {
	case Password:
		data.Set("grant_type", string(Password))
		data.Set("username", p.config.Username)
		data.Set("password", p.config.Password)
	default:
		data.Set("grant_type", string(ClientCredentials))
	}
	if len(p.config.Scopes) > 0 {
		data.Set("scope", strings.Join(p.config.Scopes, " "))
	}

	return p.doTokenRequest(ctx, data)
}

// RefreshAccessToken exchanges a refresh token for a new access token and
// caches the result.
func (p *Provider) RefreshAccessToken(ctx context.Context, refreshToken string) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", string(RefreshToken))
	data.Set("refresh_token", refreshToken)

	token, err := p.doTokenRequest(ctx, data)
	if err != nil {
		return nil, err
	}
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	p.cache.Store(p.config, token)
	return token, nil
}

func (p *Provider) doTokenRequest(ctx context.Context, data url.Values) (*Token, error) {
	// public clients identify themselves in the form body
	if p.config.ClientID != "" && p.config.ClientSecret == "" {
		data.Set("client_id", p.config.ClientID)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	if p.config.ClientID != "" && p.config.ClientSecret != "" {
		req.SetBasicAuth(p.config.ClientID, p.config.ClientSecret)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		tokenErr := &TokenError{StatusCode: resp.StatusCode}
		if json.Unmarshal(body, tokenErr) == nil && tokenErr.Code != "" {
			return nil, tokenErr
		}
		return nil, fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("no access_token in response: %s", string(body))
	}

	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return &token, nil
}

// Package model defines the request and response records shared by the
// extraction functions and the stores that hold them.
package model

import (
	"strings"
	"time"
)

// AuthType names the authentication scheme configured on a request.
type AuthType string

const (
	AuthNone   AuthType = ""
	AuthBasic  AuthType = "basic"
	AuthBearer AuthType = "bearer"
	AuthDigest AuthType = "digest"
	AuthOAuth2 AuthType = "oauth2"
)

// Header is a single name/value pair. Order and duplicates are preserved.
type Header struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Authentication holds the credentials of a request and, for OAuth2, the
// state of the last token exchange.
type Authentication struct {
	Type AuthType `json:"type,omitempty" yaml:"type,omitempty"`

	// basic, digest and oauth2 password grant
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	// bearer
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	GrantType    string   `json:"grantType,omitempty" yaml:"grantType,omitempty"`
	TokenURL     string   `json:"tokenUrl,omitempty" yaml:"tokenUrl,omitempty"`
	ClientID     string   `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	ClientSecret string   `json:"clientSecret,omitempty" yaml:"clientSecret,omitempty"`
	Scopes       []string `json:"scopes,omitempty" yaml:"scopes,omitempty"`

	AccessToken      string `json:"accessToken,omitempty" yaml:"accessToken,omitempty"`
	RefreshToken     string `json:"refreshToken,omitempty" yaml:"refreshToken,omitempty"`
	IdentityToken    string `json:"identityToken,omitempty" yaml:"identityToken,omitempty"`
	ExpiresAt        int64  `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"` // unix milliseconds
	Error            string `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty" yaml:"errorDescription,omitempty"`
	ErrorURI         string `json:"errorUri,omitempty" yaml:"errorUri,omitempty"`
}

// IsOAuth2 reports whether a is configured for OAuth2.
func (a *Authentication) IsOAuth2() bool {
	return a != nil && a.Type == AuthOAuth2
}

// Request is a stored HTTP request definition.
type Request struct {
	ID             string          `json:"id"`
	WorkspaceID    string          `json:"workspaceId,omitempty"`
	Name           string          `json:"name,omitempty"`
	Method         string          `json:"method"`
	URL            string          `json:"url"`
	Headers        []Header        `json:"headers,omitempty"`
	Body           string          `json:"body,omitempty"`
	Authentication *Authentication `json:"authentication,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Response is a stored HTTP response. The body lives in the file at BodyPath.
type Response struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"requestId"`
	Status      int       `json:"status"`
	StatusText  string    `json:"statusText,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	URL         string    `json:"url,omitempty"`
	Headers     []Header  `json:"headers,omitempty"`
	Elapsed     int64     `json:"elapsed"` // milliseconds
	Size        int64     `json:"size"`    // bytes
	BodyPath    string    `json:"bodyPath,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Header returns the first header value matching name, case-insensitively.
func (r *Response) Header(name string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

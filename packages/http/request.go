package http

import (
	"encoding/base64"
	"strings"

	"github.com/abdul-hamid-achik/respext/packages/model"
)

// Request is an outgoing request with its headers in send order.
type Request struct {
	Method  string
	URL     string
	Headers []model.Header
	Body    string
	// Digest holds credentials answered after a 401 challenge.
	Digest *DigestCredentials
}

type DigestCredentials struct {
	Username string
	Password string
}

func NewRequest(method, url string) *Request {
	if method == "" {
		method = "GET"
	}
	return &Request{Method: strings.ToUpper(method), URL: url}
}

// SetHeader replaces every header named key with a single value.
func (r *Request) SetHeader(key, value string) *Request {
	kept := r.Headers[:0]
	for _, h := range r.Headers {
		if !strings.EqualFold(h.Name, key) {
			kept = append(kept, h)
		}
	}
	r.Headers = append(kept, model.Header{Name: key, Value: value})
	return r
}

// AddHeader appends a header, keeping existing values with the same name.
func (r *Request) AddHeader(key, value string) *Request {
	r.Headers = append(r.Headers, model.Header{Name: key, Value: value})
	return r
}

// Header returns the first value of the header named key.
func (r *Request) Header(key string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, key) {
			return h.Value
		}
	}
	return ""
}

// ApplyAuth configures r for the credentials in auth. OAuth2 requests are
// sent with their stored access token, if any.
func (r *Request) ApplyAuth(auth *model.Authentication) {
	if auth == nil {
		return
	}

	switch auth.Type {
	case model.AuthBasic:
		creds := base64.StdEncoding.EncodeToString([]byte(auth.Username + ":" + auth.Password))
		r.SetHeader("Authorization", "Basic "+creds)
	case model.AuthBearer:
		if auth.Token != "" {
			r.SetHeader("Authorization", "Bearer "+auth.Token)
		}
	case model.AuthDigest:
		r.Digest = &DigestCredentials{Username: auth.Username, Password: auth.Password}
	case model.AuthOAuth2:
		if auth.AccessToken != "" {
			r.SetHeader("Authorization", "Bearer "+auth.AccessToken)
		}
	}
}

// BuildRequest converts a stored request definition into a Request.
func BuildRequest(req *model.Request) *Request {
	r := NewRequest(req.Method, req.URL)
	r.Headers = append(r.Headers, req.Headers...)
	r.Body = req.Body
	r.ApplyAuth(req.Authentication)
	return r
}

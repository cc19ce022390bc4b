package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/respext/packages/logging"
	"github.com/abdul-hamid-achik/respext/packages/model"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 10
	DefaultUserAgent    = "respext"

	maxIdleConns        = 100
	maxIdleConnsPerHost = 10
	idleConnTimeout     = 90 * time.Second
)

// ErrInvalidURL is returned for URLs that cannot be sent.
var ErrInvalidURL = errors.New("invalid URL")

// Client sends requests and reads whole response bodies.
type Client struct {
	http           *http.Client
	defaultHeaders []model.Header
	logger         *slog.Logger
}

type clientSettings struct {
	timeout        time.Duration
	followRedirect bool
	maxRedirects   int
	validateSSL    bool
	proxyURL       string
	headers        map[string]string
	logger         *slog.Logger
}

type ClientOption func(*clientSettings)

func WithTimeout(d time.Duration) ClientOption {
	return func(s *clientSettings) { s.timeout = d }
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(s *clientSettings) { s.followRedirect = follow }
}

func WithMaxRedirects(max int) ClientOption {
	return func(s *clientSettings) { s.maxRedirects = max }
}

// WithDefaultHeaders sets headers sent with every request unless the
// request sets them itself.
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(s *clientSettings) {
		for k, v := range headers {
			s.headers[k] = v
		}
	}
}

// WithValidateSSL enables or disables certificate validation.
func WithValidateSSL(validate bool) ClientOption {
	return func(s *clientSettings) { s.validateSSL = validate }
}

// WithProxy routes every request through proxyURL.
func WithProxy(proxyURL string) ClientOption {
	return func(s *clientSettings) { s.proxyURL = proxyURL }
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(s *clientSettings) { s.logger = logger }
}

func NewClient(opts ...ClientOption) *Client {
	s := &clientSettings{
		timeout:        DefaultTimeout,
		followRedirect: true,
		maxRedirects:   DefaultMaxRedirects,
		validateSSL:    true,
		headers:        map[string]string{"User-Agent": DefaultUserAgent},
	}
	for _, opt := range opts {
		opt(s)
	}

	logger := logging.OrNop(s.logger)
	c := &Client{logger: logger}

	names := make([]string, 0, len(s.headers))
	for name := range s.headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.defaultHeaders = append(c.defaultHeaders, model.Header{Name: name, Value: s.headers[name]})
	}

	c.http = &http.Client{
		Transport: newTransport(s, logger),
		Timeout:   s.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if !s.followRedirect || len(via) >= s.maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return c
}

func newTransport(s *clientSettings, logger *slog.Logger) *http.Transport {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
	}
	if !s.validateSSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if s.proxyURL != "" {
		proxyURL, err := neturl.Parse(s.proxyURL)
		if err != nil {
			logger.Warn("ignoring invalid proxy URL", "proxy", s.proxyURL, "error", err)
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return transport
}

// HTTPClient exposes the underlying client so token exchanges share its
// transport settings.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Send executes req. Digest credentials trigger a challenge round trip
// first. A non-2xx status is not an error.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if err := ValidateURL(req.URL); err != nil {
		return nil, err
	}

	resp, err := c.roundTrip(ctx, req, "")
	if err != nil || req.Digest == nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	challenge := resp.Header("WWW-Authenticate")
	if !strings.HasPrefix(strings.ToLower(challenge), "digest") {
		return resp, nil
	}
	authorization, err := digestAuthorization(req, challenge)
	if err != nil {
		return nil, err
	}
	return c.roundTrip(ctx, req, authorization)
}

func (c *Client) roundTrip(ctx context.Context, req *Request, authorization string) (*Response, error) {
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}

	for _, h := range c.defaultHeaders {
		httpReq.Header.Set(h.Name, h.Value)
	}
	// request headers replace defaults but repeat among themselves
	for _, h := range req.Headers {
		httpReq.Header.Del(h.Name)
	}
	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}
	if authorization != "" {
		httpReq.Header.Set("Authorization", authorization)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(httpResp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("http exchange",
		"method", req.Method,
		"url", req.URL,
		"status", httpResp.StatusCode,
		"bytes", len(payload),
		"elapsed", elapsed)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		URL:        httpResp.Request.URL.String(),
		Headers:    flattenHeaders(httpResp.Header),
		Body:       payload,
		Duration:   elapsed,
	}, nil
}

// ValidateURL accepts absolute http and https URLs.
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q (only http and https are allowed)", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

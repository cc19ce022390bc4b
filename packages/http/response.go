package http

import (
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/respext/packages/model"
)

type Response struct {
	StatusCode int
	Status     string
	// URL is the final URL after redirects.
	URL      string
	Headers  []model.Header
	Body     []byte
	Duration time.Duration
}

func (r *Response) Header(key string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, key) {
			return h.Value
		}
	}
	return ""
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

// StatusText returns the reason phrase without the numeric code.
func (r *Response) StatusText() string {
	if _, text, ok := strings.Cut(r.Status, " "); ok {
		return text
	}
	return r.Status
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

// flattenHeaders lists every header value, sorted by name and keeping the
// order of repeated values.
func flattenHeaders(h map[string][]string) []model.Header {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	headers := make([]model.Header, 0, len(h))
	for _, name := range names {
		for _, v := range h[name] {
			headers = append(headers, model.Header{Name: name, Value: v})
		}
	}
	return headers
}

package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/abdul-hamid-achik/respext/packages/extract"
	"github.com/abdul-hamid-achik/respext/packages/model"
	"github.com/abdul-hamid-achik/respext/packages/stats"
)

// JSONExtraction is the JSON form of an extraction result
type JSONExtraction struct {
	Function string `json:"function"`
	OK       bool   `json:"ok"`
	Value    string `json:"value,omitempty"`
	Error    string `json:"error,omitempty"`
}

// JSONStats is the JSON form of a response summary, latencies in milliseconds
type JSONStats struct {
	RequestID   string  `json:"requestId"`
	Count       int     `json:"count"`
	Success     int     `json:"success"`
	Redirect    int     `json:"redirect"`
	ClientError int     `json:"clientError"`
	ServerError int     `json:"serverError"`
	SuccessRate float64 `json:"successRate"`
	Min         int64   `json:"min"`
	Mean        int64   `json:"mean"`
	P50         int64   `json:"p50"`
	P95         int64   `json:"p95"`
	P99         int64   `json:"p99"`
	Max         int64   `json:"max"`
	TotalBytes  int64   `json:"totalBytes"`
}

// JSONImport is the JSON form of an import summary
type JSONImport struct {
	Path      string `json:"path"`
	Requests  int    `json:"requests"`
	Responses int    `json:"responses"`
}

// JSONError is the JSON form of an error
type JSONError struct {
	Error string `json:"error"`
}

// JSONFormatter writes each result as an indented JSON document
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) encode(v any) {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}

func (f *JSONFormatter) FormatRequests(requests []*model.Request) {
	if requests == nil {
		requests = []*model.Request{}
	}
	f.encode(requests)
}

func (f *JSONFormatter) FormatResponses(requestID string, responses []*model.Response) {
	if responses == nil {
		responses = []*model.Response{}
	}
	f.encode(responses)
}

func (f *JSONFormatter) FormatResponse(resp *model.Response) {
	f.encode(resp)
}

func (f *JSONFormatter) FormatStats(requestID string, s stats.Summary) {
	f.encode(JSONStats{
		RequestID:   requestID,
		Count:       s.Count,
		Success:     s.Success,
		Redirect:    s.Redirect,
		ClientError: s.ClientError,
		ServerError: s.ServerError,
		SuccessRate: s.SuccessRate(),
		Min:         s.Min.Milliseconds(),
		Mean:        s.Mean.Milliseconds(),
		P50:         s.P50.Milliseconds(),
		P95:         s.P95.Milliseconds(),
		P99:         s.P99.Milliseconds(),
		Max:         s.Max.Milliseconds(),
		TotalBytes:  s.TotalBytes,
	})
}

func (f *JSONFormatter) FormatExtraction(function string, result extract.Result) {
	out := JSONExtraction{Function: function, OK: result.OK, Value: result.Value}
	if result.Err != nil {
		out.Error = result.Err.Error()
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatFunctions(defs []extract.Definition) {
	if defs == nil {
		defs = []extract.Definition{}
	}
	f.encode(defs)
}

func (f *JSONFormatter) FormatImport(path string, requests, responses int) {
	f.encode(JSONImport{Path: path, Requests: requests, Responses: responses})
}

func (f *JSONFormatter) FormatError(err error) {
	f.encode(JSONError{Error: err.Error()})
}

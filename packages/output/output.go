package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/abdul-hamid-achik/respext/packages/extract"
	"github.com/abdul-hamid-achik/respext/packages/model"
	"github.com/abdul-hamid-achik/respext/packages/stats"
)

// Formatter renders command results.
type Formatter interface {
	FormatRequests(requests []*model.Request)
	FormatResponses(requestID string, responses []*model.Response)
	FormatResponse(resp *model.Response)
	FormatStats(requestID string, summary stats.Summary)
	FormatExtraction(function string, result extract.Result)
	FormatFunctions(defs []extract.Definition)
	FormatImport(path string, requests, responses int)
	FormatError(err error)
}

// New returns the formatter for format ("console" or "json").
func New(format string, w io.Writer, noColor bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (use console or json)", format)
	}
}

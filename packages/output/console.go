package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/respext/packages/extract"
	"github.com/abdul-hamid-achik/respext/packages/model"
	"github.com/abdul-hamid-achik/respext/packages/stats"
)

// truncate shortens s to maxLen bytes for display
func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

type ConsoleFormatter struct {
	writer  io.Writer
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func statusColor(status int) func(a ...any) string {
	switch {
	case status >= 500:
		return color.New(color.FgRed).SprintFunc()
	case status >= 400:
		return color.New(color.FgYellow).SprintFunc()
	case status >= 300:
		return color.New(color.FgCyan).SprintFunc()
	default:
		return color.New(color.FgGreen).SprintFunc()
	}
}

func (f *ConsoleFormatter) FormatRequests(requests []*model.Request) {
	if len(requests) == 0 {
		fmt.Fprintln(f.writer, "No requests stored.")
		return
	}

	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	tw := tabwriter.NewWriter(f.writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", bold("ID"), bold("METHOD"), bold("NAME"), bold("URL"))
	for _, r := range requests {
		auth := ""
		if r.Authentication != nil && r.Authentication.Type != model.AuthNone {
			auth = " " + cyan("["+string(r.Authentication.Type)+"]")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s%s\n", r.ID, r.Method, r.Name, truncate(r.URL, 80), auth)
	}
	_ = tw.Flush()
}

func (f *ConsoleFormatter) FormatResponses(requestID string, responses []*model.Response) {
	if len(responses) == 0 {
		fmt.Fprintf(f.writer, "No responses stored for %s.\n", requestID)
		return
	}

	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s\n", bold(fmt.Sprintf("Responses for %s (newest first)", requestID)))
	tw := tabwriter.NewWriter(f.writer, 0, 4, 2, ' ', 0)
	for _, r := range responses {
		status := statusColor(r.Status)(fmt.Sprintf("%d %s", r.Status, r.StatusText))
		fmt.Fprintf(tw, "  %s\t%s\t%dms\t%dB\t%s\n",
			r.ID, status, r.Elapsed, r.Size, r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	_ = tw.Flush()
}

func (f *ConsoleFormatter) FormatResponse(resp *model.Response) {
	status := statusColor(resp.Status)(fmt.Sprintf("%d %s", resp.Status, resp.StatusText))
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s %s\n", status, resp.URL, cyan(fmt.Sprintf("(%dms, %dB)", resp.Elapsed, resp.Size)))
	fmt.Fprintf(f.writer, "  Response: %s\n", resp.ID)
	if resp.BodyPath != "" {
		fmt.Fprintf(f.writer, "  Body:     %s\n", resp.BodyPath)
	}
}

func (f *ConsoleFormatter) FormatStats(requestID string, s stats.Summary) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(f.writer, "%s\n", bold("Responses for "+requestID))
	if s.Count == 0 {
		fmt.Fprintln(f.writer, "  none")
		return
	}

	fmt.Fprintf(f.writer, "  Total:    %d (%s, %s, %s, %s)\n", s.Count,
		green(fmt.Sprintf("%d 2xx", s.Success)),
		fmt.Sprintf("%d 3xx", s.Redirect),
		yellow(fmt.Sprintf("%d 4xx", s.ClientError)),
		red(fmt.Sprintf("%d 5xx", s.ServerError)))
	fmt.Fprintf(f.writer, "  Success:  %.1f%%\n", s.SuccessRate()*100)
	fmt.Fprintf(f.writer, "  Latency:  min %dms  mean %dms  p50 %dms  p95 %dms  p99 %dms  max %dms\n",
		s.Min.Milliseconds(), s.Mean.Milliseconds(), s.P50.Milliseconds(),
		s.P95.Milliseconds(), s.P99.Milliseconds(), s.Max.Milliseconds())
	fmt.Fprintf(f.writer, "  Bytes:    %d\n", s.TotalBytes)
	fmt.Fprintf(f.writer, "  Period:   %s to %s\n",
		s.First.Local().Format("2006-01-02 15:04:05"), s.Last.Local().Format("2006-01-02 15:04:05"))
}

func (f *ConsoleFormatter) FormatExtraction(function string, result extract.Result) {
	if result.OK {
		fmt.Fprintln(f.writer, result.Value)
		return
	}
	yellow := color.New(color.FgYellow).SprintFunc()
	if result.Err != nil {
		fmt.Fprintf(f.writer, "%s %s: %v\n", yellow("No value:"), function, result.Err)
		return
	}
	fmt.Fprintf(f.writer, "%s %s\n", yellow("No value:"), function)
}

func (f *ConsoleFormatter) FormatFunctions(defs []extract.Definition) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for i, d := range defs {
		if i > 0 {
			fmt.Fprintln(f.writer)
		}
		names := make([]string, len(d.Args))
		for j, a := range d.Args {
			names[j] = a.Name
		}
		fmt.Fprintf(f.writer, "%s(%s)\n", bold(d.Name), strings.Join(names, ", "))
		fmt.Fprintf(f.writer, "  %s\n", d.Description)
		for _, a := range d.Args {
			line := fmt.Sprintf("  - %s %s: %s", cyan(a.Name), "("+string(a.Type)+")", a.Label)
			if a.DefaultValue != "" {
				line += fmt.Sprintf(" [default %s]", a.DefaultValue)
			}
			fmt.Fprintln(f.writer, line)
			for _, o := range a.Options {
				fmt.Fprintf(f.writer, "      %s: %s\n", o.Value, o.Label)
			}
		}
	}
}

func (f *ConsoleFormatter) FormatImport(path string, requests, responses int) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(f.writer, "%s Imported %d requests and %d responses from %s\n", green("✓"), requests, responses, path)
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

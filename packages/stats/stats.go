// Package stats summarizes the stored responses of a request.
package stats

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/abdul-hamid-achik/respext/packages/model"
)

// maxElapsedMs bounds the latency histogram; slower responses are clamped.
const maxElapsedMs = 3_600_000

// Summary describes a set of responses.
type Summary struct {
	Count int `json:"count"`

	// responses by status class
	Informational int `json:"informational"`
	Success       int `json:"success"`
	Redirect      int `json:"redirect"`
	ClientError   int `json:"clientError"`
	ServerError   int `json:"serverError"`

	Min  time.Duration `json:"min"`
	Mean time.Duration `json:"mean"`
	P50  time.Duration `json:"p50"`
	P95  time.Duration `json:"p95"`
	P99  time.Duration `json:"p99"`
	Max  time.Duration `json:"max"`

	TotalBytes int64     `json:"totalBytes"`
	First      time.Time `json:"first"`
	Last       time.Time `json:"last"`
}

// SuccessRate is the share of 2xx responses, between 0 and 1.
func (s Summary) SuccessRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Count)
}

// Summarize computes the Summary of responses.
func Summarize(responses []*model.Response) Summary {
	var s Summary
	if len(responses) == 0 {
		return s
	}

	// Histogram: 1ms to 1h range, 3 significant digits
	histogram := hdrhistogram.New(1, maxElapsedMs, 3)

	for _, resp := range responses {
		s.Count++
		s.TotalBytes += resp.Size

		switch resp.Status / 100 {
		case 1:
			s.Informational++
		case 2:
			s.Success++
		case 3:
			s.Redirect++
		case 4:
			s.ClientError++
		case 5:
			s.ServerError++
		}

		elapsed := resp.Elapsed
		if elapsed < 0 {
			elapsed = 0
		}
		if elapsed > maxElapsedMs {
			elapsed = maxElapsedMs
		}
		_ = histogram.RecordValue(elapsed)

		if s.First.IsZero() || resp.CreatedAt.Before(s.First) {
			s.First = resp.CreatedAt
		}
		if resp.CreatedAt.After(s.Last) {
			s.Last = resp.CreatedAt
		}
	}

	s.Min = ms(histogram.Min())
	s.Max = ms(histogram.Max())
	s.Mean = time.Duration(histogram.Mean() * float64(time.Millisecond))
	s.P50 = ms(histogram.ValueAtQuantile(50))
	s.P95 = ms(histogram.ValueAtQuantile(95))
	s.P99 = ms(histogram.ValueAtQuantile(99))

	return s
}

func ms(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}

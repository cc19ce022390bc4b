package logging

import (
	"context"
	"log/slog"
	"sync"
)

// Entry is a captured log record with its attributes flattened.
type Entry struct {
	Level   Level
	Message string
	Attrs   map[string]any
}

// Recorder is a slog.Handler that stores every record it receives.
type Recorder struct {
	mu      *sync.Mutex
	entries *[]Entry
	attrs   []slog.Attr
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		mu:      &sync.Mutex{},
		entries: &[]Entry{},
	}
}

// Logger returns a logger writing into the recorder.
func (r *Recorder) Logger() *slog.Logger {
	return slog.New(r)
}

func (r *Recorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *Recorder) Handle(_ context.Context, record slog.Record) error {
	entry := Entry{
		Level:   record.Level,
		Message: record.Message,
		Attrs:   make(map[string]any, len(r.attrs)+record.NumAttrs()),
	}
	for _, a := range r.attrs {
		entry.Attrs[a.Key] = a.Value.Resolve().Any()
	}
	record.Attrs(func(a slog.Attr) bool {
		entry.Attrs[a.Key] = a.Value.Resolve().Any()
		return true
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	*r.entries = append(*r.entries, entry)
	return nil
}

func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(r.attrs)+len(attrs))
	merged = append(merged, r.attrs...)
	merged = append(merged, attrs...)
	return &Recorder{mu: r.mu, entries: r.entries, attrs: merged}
}

// WithGroup is a no-op; groups are flattened.
func (r *Recorder) WithGroup(string) slog.Handler { return r }

// Entries returns a copy of the captured entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(*r.entries))
	copy(out, *r.entries)
	return out
}

// Messages returns the messages of entries at or above level.
func (r *Recorder) Messages(level Level) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level >= level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Reset drops all captured entries.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.entries = nil
}

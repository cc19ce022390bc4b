// Package template renders text containing {{ ... }} tags.
//
// A tag is one of:
//   - a function call such as {{ responseExtensions.body('req_1', '$.id') }}
//   - an environment variable such as {{$HOME}}
//   - a variable name set with WithVariables
//
// Tags that cannot be resolved are left in place and reported to the logger.
package template

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/respext/packages/extract"
	"github.com/abdul-hamid-achik/respext/packages/logging"
	"github.com/abdul-hamid-achik/respext/packages/selector"
)

var (
	tagPattern      = regexp.MustCompile(`\{\{([^}]+)\}\}`)
	funcCallPattern = regexp.MustCompile(`^([\w.]+)\((.*)\)$`)
)

// Renderer resolves tags against extraction functions, builtins and
// variables.
type Renderer struct {
	registry  *extract.Registry
	builtins  map[string]BuiltinFunc
	variables map[string]string
	purpose   selector.Purpose
	behavior  string
	logger    *slog.Logger
}

// Option configures a Renderer
type Option func(*Renderer)

// WithPurpose sets the purpose extraction functions are rendered for.
// The default is selector.PurposePreview.
func WithPurpose(p selector.Purpose) Option {
	return func(r *Renderer) {
		r.purpose = p
	}
}

// WithBehavior sets the trigger behavior of calls that leave the behavior
// argument out. Without it the function's declared default applies.
func WithBehavior(behavior string) Option {
	return func(r *Renderer) {
		r.behavior = behavior
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logging.OrNop(logger)
	}
}

// WithVariables adds plain variables.
func WithVariables(vars map[string]string) Option {
	return func(r *Renderer) {
		for k, v := range vars {
			r.variables[k] = v
		}
	}
}

// New creates a Renderer for the functions in registry. A nil registry
// leaves only builtins and variables.
func New(registry *extract.Registry, opts ...Option) *Renderer {
	if registry == nil {
		registry = extract.NewRegistry()
	}
	r := &Renderer{
		registry:  registry,
		builtins:  defaultBuiltins(),
		variables: make(map[string]string),
		purpose:   selector.PurposePreview,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render replaces every resolvable tag in input. Extraction functions that
// produce no value render as the empty string; their diagnostics are
// joined into the returned error, which never prevents the other tags from
// rendering.
func (r *Renderer) Render(ctx context.Context, input string) (string, error) {
	var errs []error

	out := tagPattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])

		if strings.HasPrefix(expr, "$") {
			name := expr[1:]
			if val, ok := os.LookupEnv(name); ok {
				return val
			}
			r.logger.Warn("unresolved environment variable", "name", name)
			return match
		}

		if m := funcCallPattern.FindStringSubmatch(expr); m != nil {
			val, ok, err := r.call(ctx, m[1], parseArgs(m[2]))
			if err != nil {
				errs = append(errs, err)
			}
			if !ok {
				return match
			}
			return val
		}

		if val, ok := r.variables[expr]; ok {
			return val
		}
		r.logger.Warn("unresolved variable", "name", expr)
		return match
	})

	return out, errors.Join(errs...)
}

// call evaluates one function. ok is false when the tag must stay in place.
func (r *Renderer) call(ctx context.Context, name string, args []string) (string, bool, error) {
	if _, known := r.registry.Lookup(name); known {
		res, err := r.registry.Call(ctx, name, args, r.purpose,
			extract.WithDefault(extract.ArgBehavior, r.behavior))
		if err != nil {
			r.logger.Warn("invalid function call", "function", name, "error", err)
			return "", false, err
		}
		if res.Err != nil {
			return "", true, fmt.Errorf("%s: %w", name, res.Err)
		}
		return res.Value, true, nil
	}

	if fn, known := r.builtins[name]; known {
		return fn(args), true, nil
	}

	r.logger.Warn("unresolved function call", "function", name)
	return "", false, nil
}

// parseArgs splits a comma separated argument list, honoring single and
// double quotes.
func parseArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case !inQuote && (ch == '"' || ch == '\''):
			inQuote = true
			quoteChar = ch
		case inQuote && ch == quoteChar:
			inQuote = false
			quoteChar = 0
		case !inQuote && ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	return append(args, strings.TrimSpace(current.String()))
}

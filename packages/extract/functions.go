package extract

import (
	"context"
	"fmt"
	"sort"

	"github.com/abdul-hamid-achik/respext/packages/selector"
)

// Template function names.
const (
	FuncOAuth2   = "responseExtensions.oauth2"
	FuncResponse = "responseExtensions.response"
	FuncBody     = "responseExtensions.body"
	FuncDispatch = "responseExtensions"
)

// Argument names used in CallArgs.Values.
const (
	ArgRequest   = "request"
	ArgAttribute = "attribute"
	ArgFilter    = "filter"
	ArgBehavior  = "behavior"
)

// ArgType is the kind of input a template function argument takes.
type ArgType string

const (
	ArgTypeHTTPRequest ArgType = "http_request"
	ArgTypeText        ArgType = "text"
	ArgTypeSelect      ArgType = "select"
)

// Option is a choice of a select argument.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ArgDef declares one argument of a template function.
type ArgDef struct {
	Type         ArgType  `json:"type"`
	Name         string   `json:"name"`
	Label        string   `json:"label"`
	Placeholder  string   `json:"placeholder,omitempty"`
	DefaultValue string   `json:"defaultValue,omitempty"`
	Options      []Option `json:"options,omitempty"`
}

// CallArgs are the argument values of a template function call.
type CallArgs struct {
	Values  map[string]string
	Purpose selector.Purpose
}

// Definition describes a template function and how to render it.
type Definition struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Args        []ArgDef `json:"args"`

	Render func(ctx context.Context, args CallArgs) Result `json:"-"`
}

var requestArg = ArgDef{
	Type:  ArgTypeHTTPRequest,
	Name:  ArgRequest,
	Label: "Source Request",
}

func filterArg(placeholder string) ArgDef {
	return ArgDef{
		Type:         ArgTypeText,
		Name:         ArgFilter,
		Label:        "JSONPath Filter",
		Placeholder:  placeholder,
		DefaultValue: "$",
	}
}

var behaviorArg = ArgDef{
	Type:         ArgTypeSelect,
	Name:         ArgBehavior,
	Label:        "Trigger Behavior",
	DefaultValue: string(selector.Smart),
	Options: []Option{
		{Label: "Send when no response exists", Value: string(selector.Smart)},
		{Label: "Always send", Value: string(selector.Always)},
		{Label: "Never send", Value: string(selector.Never)},
	},
}

var attributeArg = ArgDef{
	Type:         ArgTypeSelect,
	Name:         ArgAttribute,
	Label:        "Attribute Type",
	DefaultValue: string(AttributeOAuth2),
	Options: []Option{
		{Label: "OAuth2 Token", Value: string(AttributeOAuth2)},
		{Label: "Response Metadata", Value: string(AttributeResponse)},
		{Label: "Response Body", Value: string(AttributeBody)},
	},
}

// Definitions returns the template functions backed by e.
func (e *Extractor) Definitions() []Definition {
	return []Definition{
		{
			Name:        FuncOAuth2,
			Description: "Extract OAuth2 token details from a request (accessToken, refreshToken, etc.)",
			Args:        []ArgDef{requestArg, filterArg("$.accessToken")},
			Render:      e.bind(e.OAuth2),
		},
		{
			Name:        FuncResponse,
			Description: "Extract extended response metadata (statusCode, headers, contentType, etc.)",
			Args:        []ArgDef{requestArg, filterArg("$.statusCode"), behaviorArg},
			Render:      e.bind(e.Response),
		},
		{
			Name:        FuncBody,
			Description: "Extract values from the JSON body of the latest response",
			Args:        []ArgDef{requestArg, filterArg("$.data.id"), behaviorArg},
			Render:      e.bind(e.Body),
		},
		{
			Name:        FuncDispatch,
			Description: "Generic response extensions - access OAuth2, response metadata or body",
			Args:        []ArgDef{requestArg, attributeArg, filterArg("$.accessToken"), behaviorArg},
			Render: func(ctx context.Context, call CallArgs) Result {
				args, err := e.argsFrom(call)
				if err != nil {
					return absent(err)
				}
				return e.Dispatch(ctx, Attribute(call.Values[ArgAttribute]), args)
			},
		},
	}
}

// Registry indexes definitions by name.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry indexes defs by name. Later definitions replace earlier ones.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		r.Register(d)
	}
	return r
}

func (r *Registry) Register(def Definition) {
	r.defs[def.Name] = def
}

func (r *Registry) Lookup(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CallOption adjusts a single Registry.Call.
type CallOption func(defaults map[string]string)

// WithDefault makes value the default of the argument named arg, replacing
// its declared default. An empty value keeps the declared one.
func WithDefault(arg, value string) CallOption {
	return func(defaults map[string]string) {
		if value != "" {
			defaults[arg] = value
		}
	}
}

// Call renders the function name with positional argument values, matched
// to the declared arguments in order. Missing or empty values take their
// defaults.
func (r *Registry) Call(ctx context.Context, name string, positional []string, purpose selector.Purpose, opts ...CallOption) (Result, error) {
	def, ok := r.Lookup(name)
	if !ok {
		return Result{}, fmt.Errorf("unknown template function %q", name)
	}
	if len(positional) > len(def.Args) {
		return Result{}, fmt.Errorf("%s takes at most %d arguments, got %d", name, len(def.Args), len(positional))
	}

	defaults := make(map[string]string, len(def.Args))
	for _, arg := range def.Args {
		if arg.DefaultValue != "" {
			defaults[arg.Name] = arg.DefaultValue
		}
	}
	for _, opt := range opts {
		opt(defaults)
	}

	values := make(map[string]string, len(def.Args))
	for i, arg := range def.Args {
		if i < len(positional) && positional[i] != "" {
			values[arg.Name] = positional[i]
		} else if v, ok := defaults[arg.Name]; ok {
			values[arg.Name] = v
		}
	}

	return def.Render(ctx, CallArgs{Values: values, Purpose: purpose}), nil
}

func (e *Extractor) bind(fn Func) func(context.Context, CallArgs) Result {
	return func(ctx context.Context, call CallArgs) Result {
		args, err := e.argsFrom(call)
		if err != nil {
			return absent(err)
		}
		return fn(ctx, args)
	}
}

func (e *Extractor) argsFrom(call CallArgs) (Args, error) {
	mode, err := selector.ParseBehaviorMode(call.Values[ArgBehavior])
	if err != nil {
		e.logger.Warn("invalid behavior argument", "error", err)
		return Args{}, err
	}
	return Args{
		RequestID: call.Values[ArgRequest],
		Filter:    call.Values[ArgFilter],
		Behavior:  mode,
		Purpose:   call.Purpose,
	}, nil
}

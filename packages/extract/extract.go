package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdul-hamid-achik/respext/packages/jsonpath"
	"github.com/abdul-hamid-achik/respext/packages/logging"
	"github.com/abdul-hamid-achik/respext/packages/model"
	"github.com/abdul-hamid-achik/respext/packages/selector"
)

// Host is the collaborator the extractors read from.
type Host interface {
	selector.Host
	// ReadBody returns the whole content of a stored response body file.
	ReadBody(ctx context.Context, path string) ([]byte, error)
}

// Args are the inputs shared by every extractor.
type Args struct {
	RequestID string
	// Filter is a path such as "$.accessToken". Empty selects the root.
	Filter   string
	Behavior selector.BehaviorMode
	Purpose  selector.Purpose
}

// Result is the outcome of an extraction. OK is false when no value was
// produced; Err then explains why, unless the value was simply absent.
type Result struct {
	Value string
	OK    bool
	Err   error
}

// Attribute selects an extractor in Dispatch.
type Attribute string

const (
	AttributeOAuth2   Attribute = "oauth2"
	AttributeResponse Attribute = "response"
	AttributeBody     Attribute = "body"
)

// Func is the signature shared by the extractors.
type Func func(ctx context.Context, args Args) Result

// Extractor evaluates extraction functions against a Host.
type Extractor struct {
	host       Host
	selector   *selector.Selector
	logger     *slog.Logger
	attributes map[Attribute]Func
}

// New creates an Extractor. A nil logger discards output.
func New(host Host, logger *slog.Logger) *Extractor {
	logger = logging.OrNop(logger)
	e := &Extractor{
		host:     host,
		selector: selector.New(host, logger),
		logger:   logger,
	}
	e.attributes = map[Attribute]Func{
		AttributeOAuth2:   e.OAuth2,
		AttributeResponse: e.Response,
		AttributeBody:     e.Body,
	}
	return e
}

// OAuth2 extracts token fields of a request using OAuth2 authentication.
func (e *Extractor) OAuth2(ctx context.Context, args Args) (result Result) {
	defer e.recoverInto("oauth2", &result)

	if args.RequestID == "" {
		return absent(ErrMissingInput)
	}

	req, err := e.host.GetRequest(ctx, args.RequestID)
	if err != nil {
		return e.fail("oauth2", args, fmt.Errorf("failed to get request: %w", err))
	}
	if req == nil {
		return absent(ErrRequestNotFound)
	}

	if !req.Authentication.IsOAuth2() {
		return e.fail("oauth2", args, ErrAuthMismatch)
	}

	return render(jsonpath.Evaluate(OAuth2Record(req), args.Filter))
}

// Response extracts metadata of the response picked by the selector.
func (e *Extractor) Response(ctx context.Context, args Args) (result Result) {
	defer e.recoverInto("response", &result)

	resp, err := e.selector.Select(ctx, args.RequestID, args.Purpose, args.Behavior)
	if err != nil {
		return e.fail("response", args, err)
	}
	if resp == nil {
		return Result{}
	}

	return render(jsonpath.Evaluate(ResponseRecord(resp), args.Filter))
}

// Body extracts values from the JSON body of the response picked by the
// selector. A body that is not JSON is returned as raw text for the root
// filter and is an error for any other filter.
func (e *Extractor) Body(ctx context.Context, args Args) (result Result) {
	defer e.recoverInto("body", &result)

	resp, err := e.selector.Select(ctx, args.RequestID, args.Purpose, args.Behavior)
	if err != nil {
		return e.fail("body", args, err)
	}
	if resp == nil {
		return Result{}
	}

	if resp.BodyPath == "" {
		return e.fail("body", args, fmt.Errorf("%w: response %s has no body file", ErrBodyRead, resp.ID))
	}

	raw, err := e.host.ReadBody(ctx, resp.BodyPath)
	if err != nil {
		return e.fail("body", args, fmt.Errorf("%w %s: %w", ErrBodyRead, resp.BodyPath, err))
	}

	body, err := jsonpath.Parse(raw)
	if err != nil {
		if jsonpath.IsRoot(args.Filter) {
			return Result{Value: string(raw), OK: true}
		}
		return e.fail("body", args, fmt.Errorf("%w: cannot apply filter %q", ErrBodyParse, args.Filter))
	}

	return render(jsonpath.Evaluate(body, args.Filter))
}

// Dispatch routes to the extractor named by attribute. An empty attribute
// selects oauth2.
func (e *Extractor) Dispatch(ctx context.Context, attribute Attribute, args Args) Result {
	if args.RequestID == "" {
		return absent(ErrMissingInput)
	}
	if attribute == "" {
		attribute = AttributeOAuth2
	}

	fn, ok := e.attributes[attribute]
	if !ok {
		err := fmt.Errorf("%w %q", ErrUnknownAttribute, attribute)
		e.logger.Warn("unknown response extension attribute", "attribute", string(attribute))
		return absent(err)
	}
	return fn(ctx, args)
}

func (e *Extractor) fail(op string, args Args, err error) Result {
	// the selector already logged the send failure
	if !IsSilent(err) && !errors.Is(err, ErrSendFailed) {
		e.logger.Error("response extension failed",
			"function", op, "request", args.RequestID, "filter", args.Filter, "error", err)
	}
	return absent(err)
}

func (e *Extractor) recoverInto(op string, result *Result) {
	if r := recover(); r != nil {
		err := fmt.Errorf("%w: %v", ErrUnexpected, r)
		e.logger.Error("response extension panicked", "function", op, "error", err)
		*result = absent(err)
	}
}

func absent(err error) Result {
	return Result{Err: err}
}

func render(v jsonpath.Value) Result {
	out, ok := jsonpath.Render(v)
	return Result{Value: out, OK: ok}
}

// OAuth2Record builds the OAuth2 token record of req. Unset fields are null.
func OAuth2Record(req *model.Request) jsonpath.Value {
	auth := req.Authentication
	if auth == nil {
		auth = &model.Authentication{}
	}

	expiresAt := jsonpath.Null()
	if auth.ExpiresAt != 0 {
		expiresAt = jsonpath.Number(float64(auth.ExpiresAt))
	}

	return jsonpath.NewObject(
		jsonpath.Member{Key: "type", Value: jsonpath.String("OAuth2Token")},
		jsonpath.Member{Key: "parentId", Value: jsonpath.String(req.ID)},
		jsonpath.Member{Key: "modified", Value: timeValue(req.UpdatedAt)},
		jsonpath.Member{Key: "created", Value: timeValue(req.CreatedAt)},
		jsonpath.Member{Key: "accessToken", Value: jsonpath.OrNull(auth.AccessToken)},
		jsonpath.Member{Key: "refreshToken", Value: jsonpath.OrNull(auth.RefreshToken)},
		jsonpath.Member{Key: "identityToken", Value: jsonpath.OrNull(auth.IdentityToken)},
		jsonpath.Member{Key: "expiresAt", Value: expiresAt},
		jsonpath.Member{Key: "error", Value: jsonpath.OrNull(auth.Error)},
		jsonpath.Member{Key: "errorDescription", Value: jsonpath.OrNull(auth.ErrorDescription)},
		jsonpath.Member{Key: "errorUri", Value: jsonpath.OrNull(auth.ErrorURI)},
	)
}

// ResponseRecord builds the metadata record of resp.
func ResponseRecord(resp *model.Response) jsonpath.Value {
	headers := make([]jsonpath.Value, len(resp.Headers))
	for i, h := range resp.Headers {
		headers[i] = jsonpath.NewObject(
			jsonpath.Member{Key: "name", Value: jsonpath.String(h.Name)},
			jsonpath.Member{Key: "value", Value: jsonpath.String(h.Value)},
		)
	}

	return jsonpath.NewObject(
		jsonpath.Member{Key: "_id", Value: jsonpath.String(resp.ID)},
		jsonpath.Member{Key: "type", Value: jsonpath.String("Response")},
		jsonpath.Member{Key: "parentId", Value: jsonpath.String(resp.RequestID)},
		jsonpath.Member{Key: "modified", Value: timeValue(resp.UpdatedAt)},
		jsonpath.Member{Key: "created", Value: timeValue(resp.CreatedAt)},
		jsonpath.Member{Key: "statusCode", Value: jsonpath.Number(float64(resp.Status))},
		jsonpath.Member{Key: "statusMessage", Value: jsonpath.String(resp.StatusText)},
		jsonpath.Member{Key: "contentType", Value: jsonpath.String(resp.ContentType)},
		jsonpath.Member{Key: "url", Value: jsonpath.String(resp.URL)},
		jsonpath.Member{Key: "headers", Value: jsonpath.Array(headers...)},
		jsonpath.Member{Key: "elapsedTime", Value: jsonpath.Number(float64(resp.Elapsed))},
		jsonpath.Member{Key: "bytesRead", Value: jsonpath.Number(float64(resp.Size))},
	)
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func timeValue(t time.Time) jsonpath.Value {
	if t.IsZero() {
		return jsonpath.Null()
	}
	return jsonpath.String(t.UTC().Format(timeLayout))
}

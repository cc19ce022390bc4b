// Package selector decides whether an extraction reuses the latest stored
// response of a request or triggers a new send first.
package selector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abdul-hamid-achik/respext/packages/logging"
	"github.com/abdul-hamid-achik/respext/packages/model"
)

// BehaviorMode controls when a new send is triggered.
type BehaviorMode string

const (
	// Smart sends only while rendering for a send and no response exists yet.
	Smart BehaviorMode = "smart"
	// Always sends on every call.
	Always BehaviorMode = "always"
	// Never reuses stored responses only.
	Never BehaviorMode = "never"
)

// Purpose is the context an extraction is rendered in.
type Purpose string

const (
	PurposeSend    Purpose = "send"
	PurposePreview Purpose = "preview"
)

var (
	ErrMissingInput    = errors.New("no request id supplied")
	ErrRequestNotFound = errors.New("request not found")
	ErrSendFailed      = errors.New("failed to send request")
	ErrInvalidBehavior = errors.New("invalid behavior mode")
)

// Host is the collaborator that owns requests and responses.
type Host interface {
	// GetRequest returns nil, nil when no request has the id.
	GetRequest(ctx context.Context, id string) (*model.Request, error)
	// FindResponses returns the stored responses of a request, newest first.
	FindResponses(ctx context.Context, requestID string) ([]*model.Response, error)
	// SendRequest issues the request and stores the resulting response.
	SendRequest(ctx context.Context, id string) error
}

// ParseBehaviorMode parses s, defaulting to Smart when s is empty.
func ParseBehaviorMode(s string) (BehaviorMode, error) {
	switch BehaviorMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Smart:
		return Smart, nil
	case Always:
		return Always, nil
	case Never:
		return Never, nil
	default:
		return "", fmt.Errorf("%w: %q (expected smart, always or never)", ErrInvalidBehavior, s)
	}
}

// ShouldSend reports whether a call in mode for purpose, with existing stored
// responses, must send the request first.
func ShouldSend(mode BehaviorMode, purpose Purpose, existing int) bool {
	switch mode {
	case Always:
		return true
	case Smart, "":
		return purpose == PurposeSend && existing == 0
	default:
		return false
	}
}

// Selector picks the response an extraction reads from.
type Selector struct {
	host   Host
	logger *slog.Logger
}

// New creates a Selector. A nil logger discards output.
func New(host Host, logger *slog.Logger) *Selector {
	return &Selector{
		host:   host,
		logger: logging.OrNop(logger),
	}
}

// Select returns the response to extract from, or nil when there is none.
//
// A missing id or unknown request returns ErrMissingInput or
// ErrRequestNotFound without logging. A failed send is logged and returned
// wrapped in ErrSendFailed; in every error case the response is nil.
func (s *Selector) Select(ctx context.Context, requestID string, purpose Purpose, mode BehaviorMode) (*model.Response, error) {
	if requestID == "" {
		return nil, ErrMissingInput
	}

	req, err := s.host.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request %s: %w", requestID, err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}

	responses, err := s.host.FindResponses(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find responses for %s: %w", req.ID, err)
	}

	if !ShouldSend(mode, purpose, len(responses)) {
		return first(responses), nil
	}

	s.logger.Debug("sending request before extraction",
		"request", req.ID, "behavior", string(mode), "purpose", string(purpose))

	if err := s.host.SendRequest(ctx, req.ID); err != nil {
		s.logger.Error("failed to send request", "request", req.ID, "error", err)
		return nil, fmt.Errorf("%w %s: %w", ErrSendFailed, req.ID, err)
	}

	responses, err = s.host.FindResponses(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find responses for %s: %w", req.ID, err)
	}
	return first(responses), nil
}

func first(responses []*model.Response) *model.Response {
	if len(responses) == 0 {
		return nil
	}
	return responses[0]
}

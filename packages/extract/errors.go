package extract

import (
	"errors"

	"github.com/abdul-hamid-achik/respext/packages/selector"
)

// Diagnostics carried in Result.Err. None of them is ever raised to the
// caller; an extraction with an error simply produces no value.
var (
	ErrMissingInput    = selector.ErrMissingInput
	ErrRequestNotFound = selector.ErrRequestNotFound
	ErrSendFailed      = selector.ErrSendFailed

	ErrAuthMismatch     = errors.New("request does not have OAuth2 authentication configured")
	ErrBodyRead         = errors.New("failed to read response body")
	ErrBodyParse        = errors.New("response body is not valid JSON")
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrUnexpected       = errors.New("unexpected extraction failure")
)

// IsSilent reports whether err is an expected absence that is not logged:
// no request id, or an id that does not resolve.
func IsSilent(err error) bool {
	return errors.Is(err, ErrMissingInput) || errors.Is(err, ErrRequestNotFound)
}

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/teemow/workspace-mcp/internal/session"
)

// Kind classifies auth failures.
type Kind string

const (
	KindInvalidRequest     Kind = "invalid_request"
	KindNotAuthenticated   Kind = "not_authenticated"
	KindTokenExpired       Kind = "token_expired"
	KindAuthExchangeFailed Kind = "auth_exchange_failed"
	KindStoreUnavailable   Kind = "store_unavailable"
)

// Error is an auth failure with a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status used when the error reaches an HTTP boundary.
	Status int
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrTokenExpired)
// works for every token_expired error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidRequest     = &Error{Kind: KindInvalidRequest}
	ErrNotAuthenticated   = &Error{Kind: KindNotAuthenticated}
	ErrTokenExpired       = &Error{Kind: KindTokenExpired}
	ErrAuthExchangeFailed = &Error{Kind: KindAuthExchangeFailed}
	ErrStoreUnavailable   = &Error{Kind: KindStoreUnavailable}
)

// InvalidRequest reports malformed input.
func InvalidRequest(message string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: message, Status: http.StatusBadRequest}
}

// NotAuthenticated reports that key has no stored grant.
func NotAuthenticated(key session.Key) *Error {
	return &Error{
		Kind:    KindNotAuthenticated,
		Message: fmt.Sprintf("no OAuth token found for session %q; please authenticate first via %s", key, LoginPath),
		Status:  http.StatusUnauthorized,
	}
}

// TokenExpired reports that the grant for key expired at expiresAt.
func TokenExpired(key session.Key, expiresAt int64) *Error {
	return &Error{
		Kind: KindTokenExpired,
		Message: fmt.Sprintf("OAuth token for session %q expired at %s; please re-authenticate via %s",
			key, time.Unix(expiresAt, 0).UTC().Format(time.RFC3339), LoginPath),
		Status: http.StatusUnauthorized,
	}
}

// AuthExchangeFailed reports a failed code exchange or a failed write of the result.
func AuthExchangeFailed(err error) *Error {
	return &Error{
		Kind:    KindAuthExchangeFailed,
		Message: "failed to authenticate",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// StoreUnavailable reports that the token store could not serve a read.
func StoreUnavailable(err error) *Error {
	return &Error{
		Kind:    KindStoreUnavailable,
		Message: "token store is unavailable",
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the caller-facing message of the first *Error in err's
// chain, or err.Error() for other errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

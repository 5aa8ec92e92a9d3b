package auth

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/workspace-mcp/internal/session"
)

func TestErrorKinds(t *testing.T) {
	key := session.MustParseKey("sess-1")

	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     Kind
		status   int
	}{
		{"invalid request", InvalidRequest("bad"), ErrInvalidRequest, KindInvalidRequest, http.StatusBadRequest},
		{"not authenticated", NotAuthenticated(key), ErrNotAuthenticated, KindNotAuthenticated, http.StatusUnauthorized},
		{"token expired", TokenExpired(key, 0), ErrTokenExpired, KindTokenExpired, http.StatusUnauthorized},
		{"exchange failed", AuthExchangeFailed(errBackendDown), ErrAuthExchangeFailed, KindAuthExchangeFailed, http.StatusInternalServerError},
		{"store unavailable", StoreUnavailable(errBackendDown), ErrStoreUnavailable, KindStoreUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("tool call: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(wrapped))

			var authErr *Error
			assert.True(t, errors.As(wrapped, &authErr))
			assert.Equal(t, tt.status, authErr.Status)
		})
	}
}

func TestErrorKindsDoNotCrossMatch(t *testing.T) {
	err := NotAuthenticated(session.MustParseKey("sess-1"))
	assert.NotErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
}

func TestErrorUnwrapKeepsCause(t *testing.T) {
	err := StoreUnavailable(errBackendDown)
	assert.ErrorIs(t, err, errBackendDown)
	assert.Contains(t, err.Error(), "store_unavailable")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMessagesDirectCallerToLogin(t *testing.T) {
	key := session.MustParseKey("sess-1")
	assert.Contains(t, MessageOf(NotAuthenticated(key)), LoginPath)
	assert.Contains(t, MessageOf(TokenExpired(key, 1700000000)), "re-authenticate")
	assert.Contains(t, MessageOf(TokenExpired(key, 1700000000)), "2023-11-14T22:13:20Z")
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errBackendDown))
	assert.Equal(t, "connection refused", MessageOf(errBackendDown))
}

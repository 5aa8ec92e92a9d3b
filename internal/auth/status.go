package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/workspace-mcp/internal/logging"
	"github.com/teemow/workspace-mcp/internal/session"
	"github.com/teemow/workspace-mcp/internal/tokenstore"
)

// Status is the diagnostic view of one session. It never carries token values.
type Status struct {
	Authenticated bool   `json:"authenticated"`
	Message       string `json:"message,omitempty"`
	AuthURL       string `json:"authUrl,omitempty"`
	*TokenInfo
}

// TokenInfo describes a stored grant.
type TokenInfo struct {
	SessionID       string   `json:"sessionId"`
	TokenType       string   `json:"tokenType"`
	HasAccessToken  bool     `json:"hasAccessToken"`
	HasRefreshToken bool     `json:"hasRefreshToken"`
	ExpiresAt       int64    `json:"expiresAt"`
	ExpiryDate      string   `json:"expiryDate"`
	Expired         bool     `json:"expired"`
	Scopes          []string `json:"scopes"`
}

// StatusReader answers "is this session authenticated?".
type StatusReader struct {
	resolver *session.Resolver
	store    RecordReader
	now      func() time.Time
	logger   *slog.Logger
}

// NewStatusReader creates a StatusReader. A nil logger means slog.Default().
func NewStatusReader(resolver *session.Resolver, store RecordReader, logger *slog.Logger) *StatusReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusReader{resolver: resolver, store: store, now: time.Now, logger: logger}
}

// Read reports the status of the requested session, or of the default
// session when none is requested. Failures are folded into the result.
func (s *StatusReader) Read(ctx context.Context, req session.Requested) Status {
	key, err := s.resolver.Resolve(req)
	if err != nil {
		if errors.Is(err, session.ErrNoDefaultSession) {
			return Status{Message: "No session id given and no default session is configured; set DEFAULT_SESSION_ID"}
		}
		return Status{Message: "Invalid session id: " + err.Error()}
	}

	rec, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read auth status", logging.Session(key.String()), logging.Err(err))
		if errors.Is(err, tokenstore.ErrMalformedRecord) {
			return Status{Message: "Stored token is unreadable; please authenticate again", AuthURL: LoginPath}
		}
		return Status{Message: "Authentication status service unavailable"}
	}
	if !found {
		return Status{
			Message: "Not authenticated. Please authenticate first via " + LoginPath,
			AuthURL: LoginPath,
		}
	}

	info := &TokenInfo{
		SessionID:       key.String(),
		TokenType:       rec.TokenType,
		HasAccessToken:  rec.AccessToken != "",
		HasRefreshToken: rec.RefreshToken != "",
		ExpiresAt:       rec.ExpiresAt,
		ExpiryDate:      rec.Expiry().UTC().Format(time.RFC3339),
		Expired:         rec.Expired(s.now()),
		Scopes:          strings.Fields(rec.Scope),
	}
	if info.Scopes == nil {
		info.Scopes = []string{}
	}

	st := Status{Authenticated: true, TokenInfo: info}
	if info.Expired {
		st.Message = "Token expired. Please re-authenticate via " + LoginPath
		st.AuthURL = LoginPath
	}
	return st
}

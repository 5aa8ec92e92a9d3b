package auth

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/logging"
	"github.com/teemow/workspace-mcp/internal/session"
	"github.com/teemow/workspace-mcp/internal/tokenstore"
)

const (
	// LoginPath starts the bootstrap flow.
	LoginPath = "/auth/login"
	// CallbackPath receives the provider redirect.
	CallbackPath = "/auth/callback"

	// DefaultExchangeTimeout bounds the code exchange round-trip.
	DefaultExchangeTimeout = 30 * time.Second

	// fallbackLifetime is used when the provider omits expires_in.
	fallbackLifetime = time.Hour
)

// RecordWriter persists grants.
type RecordWriter interface {
	Put(ctx context.Context, key session.Key, rec tokenstore.Record) error
}

// Flow runs the OAuth bootstrap: consent redirect, code exchange and
// persistence of the resulting grant.
type Flow struct {
	oauth           *oauth2.Config
	store           RecordWriter
	exchangeTimeout time.Duration
	httpClient      *http.Client
	now             func() time.Time
	logger          *slog.Logger
	metrics         *instrumentation.Metrics
	audit           *instrumentation.AuditLogger
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithExchangeTimeout bounds the code exchange. Non-positive values are ignored.
func WithExchangeTimeout(d time.Duration) FlowOption {
	return func(f *Flow) {
		if d > 0 {
			f.exchangeTimeout = d
		}
	}
}

// WithExchangeHTTPClient overrides the client used to reach the token endpoint.
func WithExchangeHTTPClient(c *http.Client) FlowOption {
	return func(f *Flow) { f.httpClient = c }
}

// WithFlowClock overrides time.Now.
func WithFlowClock(now func() time.Time) FlowOption {
	return func(f *Flow) { f.now = now }
}

// WithFlowLogger sets the logger.
func WithFlowLogger(logger *slog.Logger) FlowOption {
	return func(f *Flow) { f.logger = logger }
}

// WithFlowMetrics records oauth_exchange_total.
func WithFlowMetrics(m *instrumentation.Metrics) FlowOption {
	return func(f *Flow) { f.metrics = m }
}

// WithFlowAudit writes an audit line for each completion.
func WithFlowAudit(a *instrumentation.AuditLogger) FlowOption {
	return func(f *Flow) { f.audit = a }
}

// NewFlow creates a Flow that exchanges codes with conf and writes grants to store.
func NewFlow(conf *oauth2.Config, store RecordWriter, opts ...FlowOption) *Flow {
	f := &Flow{
		oauth:           conf,
		store:           store,
		exchangeTimeout: DefaultExchangeTimeout,
		now:             time.Now,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.httpClient == nil {
		f.httpClient = google.ExchangeHTTPClient(f.exchangeTimeout)
	}
	return f
}

// LoginURL returns the consent URL. Offline access and a forced consent
// prompt make the provider issue a refresh token on every bootstrap.
func (f *Flow) LoginURL(state string) string {
	return f.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Complete exchanges code and stores the grant under the session named by
// state, or under a new random session when state is empty.
func (f *Flow) Complete(ctx context.Context, code, state string) (session.Key, error) {
	if strings.TrimSpace(code) == "" {
		f.metrics.RecordOAuthExchange(ctx, instrumentation.ExchangeInvalidRequest)
		return session.Key{}, InvalidRequest("Invalid authorization code")
	}

	key := session.NewKey()
	if state != "" {
		var err error
		key, err = session.ParseKey(state)
		if err != nil {
			f.metrics.RecordOAuthExchange(ctx, instrumentation.ExchangeInvalidRequest)
			return session.Key{}, &Error{Kind: KindInvalidRequest, Message: "Invalid state", Status: http.StatusBadRequest, Err: err}
		}
	}

	ctx, span := instrumentation.StartSpan(ctx, "oauth.exchange")
	defer span.End()

	tok, err := f.exchange(ctx, code)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		f.fail(ctx, key, err)
		return session.Key{}, AuthExchangeFailed(err)
	}

	rec := f.recordFromToken(tok)
	if err := f.store.Put(ctx, key, rec); err != nil {
		instrumentation.SetSpanError(span, err)
		f.fail(ctx, key, err)
		return session.Key{}, AuthExchangeFailed(err)
	}

	instrumentation.SetSpanSuccess(span)
	f.metrics.RecordOAuthExchange(ctx, instrumentation.ExchangeSuccess)
	f.audit.LogAuthEvent(instrumentation.AuthEvent{
		Name:    "session_authenticated",
		Session: key.String(),
		Scopes:  len(rec.Scopes()),
	})
	f.logger.Info("session authenticated", logging.Session(key.String()), slog.Int64("expires_at", rec.ExpiresAt))
	return key, nil
}

func (f *Flow) exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, f.exchangeTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
	return f.oauth.Exchange(ctx, code)
}

func (f *Flow) fail(ctx context.Context, key session.Key, err error) {
	f.metrics.RecordOAuthExchange(ctx, instrumentation.ExchangeFailure)
	f.audit.LogAuthEvent(instrumentation.AuthEvent{Name: "exchange_failed", Session: key.String(), Err: err})
	f.logger.Error("failed to complete authentication", logging.Session(key.String()), logging.Err(err))
}

func (f *Flow) recordFromToken(tok *oauth2.Token) tokenstore.Record {
	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = f.now().Add(fallbackLifetime)
	}

	scope, _ := tok.Extra("scope").(string)
	if scope == "" {
		scope = strings.Join(f.oauth.Scopes, " ")
	}

	return tokenstore.Record{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiry.Unix(),
		Scope:        scope,
		// Type() normalizes the provider's casing and defaults to Bearer.
		TokenType: tok.Type(),
	}
}

// HandleLogin redirects to the consent page, passing the optional state
// through. A state that is not a valid session id is rejected before the
// redirect, since the callback would refuse it after consent.
func (f *Flow) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	state := r.URL.Query().Get("state")
	if state != "" {
		if _, err := session.ParseKey(state); err != nil {
			f.metrics.RecordOAuthExchange(r.Context(), instrumentation.ExchangeInvalidRequest)
			writeError(w, "Invalid state", http.StatusBadRequest)
			return
		}
	}
	http.Redirect(w, r, f.LoginURL(state), http.StatusFound)
}

// CallbackResponse is the JSON body of a successful callback.
type CallbackResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// HandleCallback completes the flow for the provider redirect.
func (f *Flow) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	codes := query["code"]
	if len(codes) != 1 || codes[0] == "" {
		f.metrics.RecordOAuthExchange(r.Context(), instrumentation.ExchangeInvalidRequest)
		if reason := query.Get("error"); reason != "" {
			f.logger.Warn("provider returned an error", slog.String("reason", reason))
		}
		writeError(w, "Invalid authorization code", http.StatusBadRequest)
		return
	}

	key, err := f.Complete(r.Context(), codes[0], query.Get("state"))
	if err != nil {
		var authErr *Error
		if errors.As(err, &authErr) && authErr.Kind == KindInvalidRequest {
			writeError(w, authErr.Message, http.StatusBadRequest)
			return
		}
		writeError(w, "Failed to authenticate", http.StatusInternalServerError)
		return
	}

	resp := CallbackResponse{
		Success:   true,
		SessionID: key.String(),
		Message:   "Authentication successful. Use this session id for subsequent tool calls.",
	}
	if prefersHTML(r) {
		writeSuccessPage(w, resp)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

// prefersHTML reports whether text/html is listed before application/json.
func prefersHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	html := strings.Index(accept, "text/html")
	if html < 0 {
		return false
	}
	js := strings.Index(accept, "application/json")
	return js < 0 || html < js
}

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Authentication successful</title></head>
<body>
<h1>Authentication successful</h1>
<p>{{.Message}}</p>
<p>Session ID: <code>{{.SessionID}}</code></p>
<p>You can close this window.</p>
</body>
</html>
`))

func writeSuccessPage(w http.ResponseWriter, resp CallbackResponse) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = successPage.Execute(w, resp)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, errorResponse{Error: message}, statusCode)
}

func writeJSON(w http.ResponseWriter, body any, statusCode int) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// setSecurityHeaders sets security headers on auth responses.
func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-XSS-Protection", "1; mode=block")
	// The success page is static; inline styles and scripts are never needed.
	w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	w.Header().Set("Referrer-Policy", "no-referrer")
}

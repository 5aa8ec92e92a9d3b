package auth

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/logging"
	"github.com/teemow/workspace-mcp/internal/session"
	"github.com/teemow/workspace-mcp/internal/tokenstore"
)

// RecordReader reads stored grants.
type RecordReader interface {
	Get(ctx context.Context, key session.Key) (tokenstore.Record, bool, error)
}

// ClientFactory builds authorized clients from stored grants.
type ClientFactory struct {
	store         RecordReader
	oauth         *oauth2.Config
	now           func() time.Time
	logger        *slog.Logger
	metrics       *instrumentation.Metrics
	clientOptions []option.ClientOption
}

// FactoryOption configures a ClientFactory.
type FactoryOption func(*ClientFactory)

// WithFactoryClock overrides time.Now.
func WithFactoryClock(now func() time.Time) FactoryOption {
	return func(f *ClientFactory) { f.now = now }
}

// WithFactoryLogger sets the logger.
func WithFactoryLogger(logger *slog.Logger) FactoryOption {
	return func(f *ClientFactory) { f.logger = logger }
}

// WithFactoryMetrics records client_auth_total.
func WithFactoryMetrics(m *instrumentation.Metrics) FactoryOption {
	return func(f *ClientFactory) { f.metrics = m }
}

// WithClientOptions passes extra options to every Google service built from
// the returned clients. Tests use it to point services at a fake endpoint.
func WithClientOptions(opts ...option.ClientOption) FactoryOption {
	return func(f *ClientFactory) { f.clientOptions = append(f.clientOptions, opts...) }
}

// NewClientFactory creates a ClientFactory.
func NewClientFactory(store RecordReader, conf *oauth2.Config, opts ...FactoryOption) *ClientFactory {
	f := &ClientFactory{
		store:  store,
		oauth:  conf,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Authenticate returns an authorized client for key.
//
// It fails with not_authenticated when no grant is stored, token_expired when
// the stored access token has expired (now >= expiresAt) and store_unavailable
// when the store cannot be read. It never writes to the store.
func (f *ClientFactory) Authenticate(ctx context.Context, key session.Key) (*google.Client, error) {
	rec, found, err := f.store.Get(ctx, key)
	if err != nil {
		f.metrics.RecordClientAuth(ctx, instrumentation.ClientAuthStoreUnavailable)
		f.logger.Error("failed to read token record", logging.Session(key.String()), logging.Err(err))
		return nil, StoreUnavailable(err)
	}
	if !found {
		f.metrics.RecordClientAuth(ctx, instrumentation.ClientAuthNotAuthenticated)
		return nil, NotAuthenticated(key)
	}
	if rec.Expired(f.now()) {
		f.metrics.RecordClientAuth(ctx, instrumentation.ClientAuthTokenExpired)
		f.logger.Debug("stored token expired", logging.Session(key.String()), slog.Int64("expires_at", rec.ExpiresAt))
		return nil, TokenExpired(key, rec.ExpiresAt)
	}

	tok := &oauth2.Token{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		TokenType:    rec.TokenType,
		Expiry:       rec.Expiry(),
	}

	f.metrics.RecordClientAuth(ctx, instrumentation.ClientAuthSuccess)
	return google.NewClient(key, f.oauth, tok, f.clientOptions...), nil
}

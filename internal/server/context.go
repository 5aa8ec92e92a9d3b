package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/teemow/workspace-mcp/internal/auth"
	"github.com/teemow/workspace-mcp/internal/config"
	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/logging"
	"github.com/teemow/workspace-mcp/internal/session"
	"github.com/teemow/workspace-mcp/internal/tokenstore"
)

// ServerContext holds the long-lived collaborators shared by the MCP tools,
// resources and HTTP handlers. Nothing in it is per-session; authorized
// clients are built per call by the ClientFactory.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	config   config.Config
	logger   *slog.Logger
	oauth    *oauth2.Config
	store    *tokenstore.Store
	resolver *session.Resolver
	factory  *auth.ClientFactory
	flow     *auth.Flow
	status   *auth.StatusReader
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	backend       tokenstore.Backend
	metrics       *instrumentation.Metrics
	audit         *instrumentation.AuditLogger
	clientOptions []option.ClientOption
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithBackend overrides the token store backend selected by the config.
func WithBackend(b tokenstore.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithAuditLogger sets the audit logger.
func WithAuditLogger(a *instrumentation.AuditLogger) Option {
	return func(o *options) { o.audit = a }
}

// WithGoogleClientOptions passes extra options to every Google service.
func WithGoogleClientOptions(opts ...option.ClientOption) Option {
	return func(o *options) { o.clientOptions = append(o.clientOptions, opts...) }
}

// NewServerContext wires the token lifecycle components from cfg.
// The config must already be validated.
func NewServerContext(ctx context.Context, cfg config.Config, opts ...Option) (*ServerContext, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	oauthConfig, err := google.NewOAuthConfig(cfg.Google)
	if err != nil {
		return nil, fmt.Errorf("failed to build OAuth client config: %w", err)
	}

	resolver, err := session.NewResolver(cfg.Session.DefaultID)
	if err != nil {
		return nil, err
	}

	backend := o.backend
	if backend == nil {
		backend, err = newBackend(cfg.Store, o.logger)
		if err != nil {
			return nil, err
		}
	}

	store := tokenstore.New(backend,
		tokenstore.WithTTL(cfg.Store.TTL),
		tokenstore.WithLogger(logging.WithComponent(o.logger, "tokenstore")),
		tokenstore.WithMetrics(o.metrics),
	)

	authLogger := logging.WithComponent(o.logger, "auth")
	factoryOpts := []auth.FactoryOption{
		auth.WithFactoryLogger(authLogger),
		auth.WithFactoryMetrics(o.metrics),
	}
	if len(o.clientOptions) > 0 {
		factoryOpts = append(factoryOpts, auth.WithClientOptions(o.clientOptions...))
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		config:   cfg,
		logger:   o.logger,
		oauth:    oauthConfig,
		store:    store,
		resolver: resolver,
		factory:  auth.NewClientFactory(store, oauthConfig, factoryOpts...),
		flow: auth.NewFlow(oauthConfig, store,
			auth.WithExchangeTimeout(cfg.Auth.ExchangeTimeout),
			auth.WithFlowLogger(authLogger),
			auth.WithFlowMetrics(o.metrics),
			auth.WithFlowAudit(o.audit),
		),
		status:  auth.NewStatusReader(resolver, store, authLogger),
		metrics: o.metrics,
		audit:   o.audit,
	}, nil
}

func newBackend(cfg config.StoreConfig, logger *slog.Logger) (tokenstore.Backend, error) {
	switch cfg.Type {
	case config.StoreTypeMemory:
		logger.Warn("using in-memory token store; tokens are lost on restart")
		return tokenstore.NewMemoryBackend(), nil
	case config.StoreTypeValkey, "":
		vc, err := tokenstore.ValkeyConfigFromURL(cfg.Valkey.URL)
		if err != nil {
			return nil, err
		}
		if cfg.Valkey.Password != "" {
			vc.Password = cfg.Valkey.Password
		}
		if cfg.Valkey.DB != 0 {
			vc.DB = cfg.Valkey.DB
		}
		vc.TLSEnabled = vc.TLSEnabled || cfg.Valkey.TLSEnabled
		return tokenstore.NewValkeyBackend(vc, logger)
	default:
		return nil, fmt.Errorf("unsupported token store type %q", cfg.Type)
	}
}

// Context returns the server context. It is cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the process configuration.
func (sc *ServerContext) Config() config.Config {
	return sc.config
}

// Logger returns the process logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// OAuthConfig returns the OAuth client identity.
func (sc *ServerContext) OAuthConfig() *oauth2.Config {
	return sc.oauth
}

// Store returns the token store.
func (sc *ServerContext) Store() *tokenstore.Store {
	return sc.store
}

// Resolver returns the session resolver.
func (sc *ServerContext) Resolver() *session.Resolver {
	return sc.resolver
}

// ClientFactory returns the authorized client factory.
func (sc *ServerContext) ClientFactory() *auth.ClientFactory {
	return sc.factory
}

// Flow returns the bootstrap flow.
func (sc *ServerContext) Flow() *auth.Flow {
	return sc.flow
}

// Status returns the auth status reader.
func (sc *ServerContext) Status() *auth.StatusReader {
	return sc.status
}

// Metrics returns the metrics recorder. It may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger. It may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and closes the token store.
// Calling it more than once is safe.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return sc.store.Close()
}

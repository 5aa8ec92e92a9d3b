package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/logging"
	"github.com/teemow/workspace-mcp/internal/session"
)

const (
	// KeyPrefix namespaces token records in the backend.
	KeyPrefix = "oauth_tokens:"

	// DefaultTTL is how long a record lives after its last write.
	DefaultTTL = 30 * 24 * time.Hour
)

var (
	// ErrUnavailable wraps backend failures.
	ErrUnavailable = errors.New("token store unavailable")

	// ErrMalformedRecord is returned when a stored value cannot be decoded.
	ErrMalformedRecord = errors.New("malformed token record")
)

// Backend is a key/value store with per-key expiry.
type Backend interface {
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns found=false with a nil error when key is absent or expired.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Store reads and writes token records.
type Store struct {
	backend Backend
	ttl     time.Duration
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMetrics records store operation metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates a Store on top of backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		ttl:     DefaultTTL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.WithComponent(s.logger, "tokenstore")
	return s
}

// StorageKey returns the backend key for a session.
func StorageKey(key session.Key) string {
	return KeyPrefix + key.String()
}

// Put stores rec for key, replacing any previous record and resetting the TTL.
func (s *Store) Put(ctx context.Context, key session.Key, rec Record) (err error) {
	ctx, span := instrumentation.StartStoreSpan(ctx, instrumentation.StoreOperationPut)
	defer span.End()
	start := time.Now()
	defer func() { s.observe(ctx, instrumentation.StoreOperationPut, start, err) }()

	if key.IsZero() {
		return fmt.Errorf("cannot store token record: %w", session.ErrEmptyKey)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode token record: %w", err)
	}

	if err := s.backend.Set(ctx, StorageKey(key), data, s.ttl); err != nil {
		instrumentation.SetSpanError(span, err)
		return fmt.Errorf("%w: put: %w", ErrUnavailable, err)
	}

	s.logger.Debug("stored token record",
		logging.Session(key.String()),
		slog.String("access_token", logging.SanitizeToken(rec.AccessToken)),
		slog.Bool("has_refresh_token", rec.RefreshToken != ""))
	return nil
}

// Get returns the record for key. found is false with a nil error when the
// session has no record.
func (s *Store) Get(ctx context.Context, key session.Key) (rec Record, found bool, err error) {
	ctx, span := instrumentation.StartStoreSpan(ctx, instrumentation.StoreOperationGet)
	defer span.End()
	start := time.Now()
	defer func() { s.observe(ctx, instrumentation.StoreOperationGet, start, err) }()

	if key.IsZero() {
		return Record{}, false, nil
	}

	data, found, err := s.backend.Get(ctx, StorageKey(key))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return Record{}, false, fmt.Errorf("%w: get: %w", ErrUnavailable, err)
	}
	if !found {
		return Record{}, false, nil
	}

	if err := json.Unmarshal(data, &rec); err != nil {
		instrumentation.SetSpanError(span, err)
		s.logger.Warn("stored token record is not valid JSON", logging.Session(key.String()), logging.Err(err))
		return Record{}, false, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return rec, true, nil
}

// Ping checks backend reachability.
func (s *Store) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.observe(ctx, instrumentation.StoreOperationPing, start, err) }()

	if err := s.backend.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) observe(ctx context.Context, op string, start time.Time, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	s.metrics.RecordStoreOperation(ctx, op, status, time.Since(start))
}

package tokenstore

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/teemow/workspace-mcp/internal/logging"
)

// ValkeyConfig holds connection settings for the Valkey backend.
type ValkeyConfig struct {
	// Address is host:port, e.g. "valkey.namespace.svc:6379".
	Address  string
	Password string
	DB       int

	// TLSEnabled enables TLS with a minimum of TLS 1.2.
	TLSEnabled bool

	// DialTimeout bounds connection establishment (default: 5s).
	DialTimeout time.Duration
}

// ValkeyConfigFromURL builds a ValkeyConfig from either a plain host:port or
// a redis://, rediss://, valkey:// or valkeys:// URL. Credentials, database
// and TLS given in the URL are carried over.
func ValkeyConfigFromURL(raw string) (ValkeyConfig, error) {
	if !strings.Contains(raw, "://") {
		return ValkeyConfig{Address: raw}, nil
	}

	normalized := raw
	switch {
	case strings.HasPrefix(raw, "valkeys://"):
		normalized = "rediss://" + strings.TrimPrefix(raw, "valkeys://")
	case strings.HasPrefix(raw, "valkey://"):
		normalized = "redis://" + strings.TrimPrefix(raw, "valkey://")
	}

	opt, err := valkey.ParseURL(normalized)
	if err != nil {
		return ValkeyConfig{}, fmt.Errorf("invalid valkey URL: %w", err)
	}
	if len(opt.InitAddress) == 0 {
		return ValkeyConfig{}, errors.New("invalid valkey URL: no address")
	}
	return ValkeyConfig{
		Address:    opt.InitAddress[0],
		Password:   opt.Password,
		DB:         opt.SelectDB,
		TLSEnabled: opt.TLSConfig != nil,
	}, nil
}

// conn is the subset of commands the backend issues.
type conn interface {
	setex(ctx context.Context, key string, value []byte, ttl time.Duration) error
	get(ctx context.Context, key string) ([]byte, bool, error)
	ping(ctx context.Context) error
	close()
}

type dialFunc func(cfg ValkeyConfig) (conn, error)

// ValkeyBackend stores records in Valkey. The connection is opened on first
// use and reused afterwards. A failed dial is not remembered, so the next
// operation tries again.
type ValkeyBackend struct {
	cfg    ValkeyConfig
	dial   dialFunc
	logger *slog.Logger

	mu     sync.Mutex
	conn   conn
	closed bool
}

// NewValkeyBackend returns a backend for cfg. No connection is made until the
// first operation.
func NewValkeyBackend(cfg ValkeyConfig, logger *slog.Logger) (*ValkeyBackend, error) {
	if cfg.Address == "" {
		return nil, errors.New("valkey address is required")
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ValkeyBackend{
		cfg:    cfg,
		dial:   dialValkey,
		logger: logging.WithComponent(logger, "valkey"),
	}, nil
}

func (b *ValkeyBackend) connection() (conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, errors.New("valkey backend is closed")
	}
	if b.conn != nil {
		return b.conn, nil
	}

	c, err := b.dial(b.cfg)
	if err != nil {
		b.logger.Warn("failed to connect to valkey", slog.String("address", b.cfg.Address), logging.Err(err))
		return nil, err
	}
	b.logger.Debug("connected to valkey", slog.String("address", b.cfg.Address), slog.Int("db", b.cfg.DB))
	b.conn = c
	return c, nil
}

// Set implements Backend.
func (b *ValkeyBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c, err := b.connection()
	if err != nil {
		return err
	}
	return c.setex(ctx, key, value, ttl)
}

// Get implements Backend.
func (b *ValkeyBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c, err := b.connection()
	if err != nil {
		return nil, false, err
	}
	return c.get(ctx, key)
}

// Ping implements Backend.
func (b *ValkeyBackend) Ping(ctx context.Context) error {
	c, err := b.connection()
	if err != nil {
		return err
	}
	return c.ping(ctx)
}

// Close implements Backend.
func (b *ValkeyBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	if b.conn != nil {
		b.conn.close()
		b.conn = nil
	}
	return nil
}

type valkeyConn struct {
	client valkey.Client
}

func dialValkey(cfg ValkeyConfig) (conn, error) {
	opt := valkey.ClientOption{
		InitAddress:  []string{cfg.Address},
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		Dialer:       net.Dialer{Timeout: cfg.DialTimeout},
	}
	if cfg.TLSEnabled {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey at %s: %w", cfg.Address, err)
	}
	return &valkeyConn{client: client}, nil
}

func (c *valkeyConn) setex(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	cmd := c.client.B().Setex().Key(key).Seconds(seconds).Value(valkey.BinaryString(value)).Build()
	return c.client.Do(ctx, cmd).Error()
}

func (c *valkeyConn) get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (c *valkeyConn) ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

func (c *valkeyConn) close() {
	c.client.Close()
}

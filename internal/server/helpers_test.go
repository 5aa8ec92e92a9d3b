package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-mcp/internal/config"
	"github.com/teemow/workspace-mcp/internal/tokenstore"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Google = config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/auth/callback",
		Scopes:       []string{"gmail.readonly"},
	}
	cfg.Session.DefaultID = "sess-default"
	cfg.Store.Type = config.StoreTypeMemory
	cfg.Server.HTTPAddr = "127.0.0.1:0"
	return cfg
}

func newTestServerContext(t *testing.T, opts ...Option) *ServerContext {
	t.Helper()
	sc, err := NewServerContext(context.Background(), testConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// downBackend fails every operation.
type downBackend struct{}

var errDown = errors.New("connection refused")

func (downBackend) Set(context.Context, string, []byte, time.Duration) error { return errDown }
func (downBackend) Get(context.Context, string) ([]byte, bool, error)       { return nil, false, errDown }
func (downBackend) Ping(context.Context) error                              { return errDown }
func (downBackend) Close() error                                            { return nil }

var _ tokenstore.Backend = downBackend{}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"golang.org/x/oauth2"

	"github.com/teemow/workspace-mcp/internal/session"
	"github.com/teemow/workspace-mcp/internal/tokenstore"
)

func newMemoryStore() *tokenstore.Store {
	return tokenstore.New(tokenstore.NewMemoryBackend())
}

// tokenServer fakes the provider token endpoint.
type tokenServer struct {
	*httptest.Server
	calls    atomic.Int32
	lastCode atomic.Value
}

func newTokenServer(t *testing.T, status int, body map[string]any) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.calls.Add(1)
		_ = r.ParseForm()
		ts.lastCode.Store(r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testOAuthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080" + CallbackPath,
		Scopes:       []string{"scope-a", "scope-b"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://accounts.example.com/o/oauth2/auth",
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

type failingStore struct {
	err error
}

func (s failingStore) Put(context.Context, session.Key, tokenstore.Record) error {
	return s.err
}

func (s failingStore) Get(context.Context, session.Key) (tokenstore.Record, bool, error) {
	return tokenstore.Record{}, false, s.err
}

var errBackendDown = errors.New("connection refused")

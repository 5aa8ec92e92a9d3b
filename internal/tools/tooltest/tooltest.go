// Package tooltest holds helpers for testing MCP tools against fake
// Workspace API servers.
package tooltest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/teemow/workspace-mcp/internal/config"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/session"
	"github.com/teemow/workspace-mcp/internal/tokenstore"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

// DefaultSession is the default session id configured by NewServerContext.
const DefaultSession = "sess-default"

// AccessToken is the access token stored by PutToken.
const AccessToken = "test-access-token"

// Config returns a valid configuration backed by the memory store.
func Config() config.Config {
	cfg := config.Default()
	cfg.Google = config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/auth/callback",
		Scopes:       []string{"gmail.readonly", "calendar.readonly", "drive.readonly"},
	}
	cfg.Session.DefaultID = DefaultSession
	cfg.Store.Type = config.StoreTypeMemory
	return cfg
}

// NewServerContext returns a ServerContext whose Google services talk to api.
// api may be nil for tools that make no API call.
func NewServerContext(t *testing.T, api *httptest.Server, opts ...server.Option) *server.ServerContext {
	t.Helper()
	if api != nil {
		opts = append(opts, server.WithGoogleClientOptions(option.WithEndpoint(api.URL+"/")))
	}
	sc, err := server.NewServerContext(context.Background(), Config(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// PutToken stores a grant for id valid for ttl (negative for an expired one).
func PutToken(t *testing.T, sc *server.ServerContext, id string, ttl time.Duration) {
	t.Helper()
	require.NoError(t, sc.Store().Put(context.Background(), session.MustParseKey(id), tokenstore.Record{
		AccessToken:  AccessToken,
		RefreshToken: "test-refresh-token",
		ExpiresAt:    time.Now().Add(ttl).Unix(),
		Scope:        "https://www.googleapis.com/auth/gmail.readonly",
		TokenType:    "Bearer",
	}))
}

// NewAPI starts a fake API server. Requests without the stored access token
// fail the test.
func NewAPI(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+AccessToken {
			t.Errorf("unexpected Authorization header %q", got)
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Result is a decoded tool envelope.
type Result struct {
	IsError bool
	Success bool                  `json:"success"`
	Data    json.RawMessage       `json:"data"`
	Error   *common.EnvelopeError `json:"error"`
}

// Call invokes a registered tool with args and decodes its envelope.
func Call(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]any) Result {
	t.Helper()
	tool, ok := s.ListTools()[name]
	require.True(t, ok, "tool %s is not registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)

	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)

	var out Result
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	out.IsError = res.IsError
	return out
}

// DecodeData decodes the data of a successful result into v.
func (r Result) DecodeData(t *testing.T, v any) {
	t.Helper()
	require.True(t, r.Success, "tool failed: %+v", r.Error)
	require.NoError(t, json.Unmarshal(r.Data, v))
}

// NewMCPServer returns an MCP server for registering tools under test.
func NewMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(false))
}

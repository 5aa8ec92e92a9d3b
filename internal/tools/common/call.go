package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/auth"
	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/session"
)

// SessionIDArg is the optional argument every tool accepts.
const SessionIDArg = "sessionId"

// WithSessionID declares the sessionId argument on a tool.
func WithSessionID() mcp.ToolOption {
	return mcp.WithString(SessionIDArg,
		mcp.Description("Session to act for. Omit (or pass 'default') to use the configured default session."),
	)
}

// Call is one tool invocation. It binds arguments and resolves the session.
type Call struct {
	Request mcp.CallToolRequest
	sc      *server.ServerContext
	session session.Key
}

// NewCall creates a Call for request.
func NewCall(request mcp.CallToolRequest, sc *server.ServerContext) *Call {
	return &Call{Request: request, sc: sc}
}

// ServerContext returns the server context the call runs in.
func (c *Call) ServerContext() *server.ServerContext {
	return c.sc
}

// Session returns the session resolved by Client, or the zero Key before that.
func (c *Call) Session() session.Key {
	return c.session
}

// RequestedSession reads the sessionId argument.
func (c *Call) RequestedSession() (session.Requested, error) {
	raw, ok := c.Request.GetArguments()[SessionIDArg]
	if !ok || raw == nil {
		return session.None(), nil
	}
	id, ok := raw.(string)
	if !ok {
		return session.None(), auth.InvalidRequest(SessionIDArg + " must be a string")
	}
	return session.FromArgument(id), nil
}

// Client resolves the session and returns an authorized client for it.
// It is called once per invocation; clients are never cached.
func (c *Call) Client(ctx context.Context) (*google.Client, error) {
	req, err := c.RequestedSession()
	if err != nil {
		return nil, err
	}

	key, err := c.sc.Resolver().Resolve(req)
	if err != nil {
		if errors.Is(err, session.ErrNoDefaultSession) {
			return nil, auth.InvalidRequest("no sessionId given and no default session is configured")
		}
		return nil, auth.InvalidRequest(fmt.Sprintf("invalid %s: %v", SessionIDArg, err))
	}
	c.session = key

	return c.sc.ClientFactory().Authenticate(ctx, key)
}

// RequireString returns a required, non-empty string argument.
func (c *Call) RequireString(name string) (string, error) {
	v, err := c.Request.RequireString(name)
	if err != nil {
		return "", auth.InvalidRequest(err.Error())
	}
	if v == "" {
		return "", auth.InvalidRequest(name + " must not be empty")
	}
	return v, nil
}

// String returns an optional string argument, or def when absent.
func (c *Call) String(name, def string) (string, error) {
	raw, ok := c.Request.GetArguments()[name]
	if !ok || raw == nil {
		return def, nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", auth.InvalidRequest(name + " must be a string")
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

// Int returns an optional integer argument within [minVal, maxVal], or def when absent.
func (c *Call) Int(name string, def, minVal, maxVal int) (int, error) {
	raw, ok := c.Request.GetArguments()[name]
	if !ok || raw == nil {
		return def, nil
	}

	var n int
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, auth.InvalidRequest(name + " must be an integer")
		}
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	default:
		return 0, auth.InvalidRequest(name + " must be a number")
	}

	if n < minVal || n > maxVal {
		return 0, auth.InvalidRequest(fmt.Sprintf("%s must be between %d and %d", name, minVal, maxVal))
	}
	return n, nil
}

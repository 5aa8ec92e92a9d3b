package auth_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/auth"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/session"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

// LoginURLResult is returned by auth_login_url.
type LoginURLResult struct {
	URL   string `json:"url"`
	State string `json:"state,omitempty"`
	// Instructions tell the user what happens after consent.
	Instructions string `json:"instructions"`
}

// RegisterAuthTools registers the bootstrap tools with the MCP server.
func RegisterAuthTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	loginURLTool := mcp.NewTool("auth_login_url",
		mcp.WithDescription("Get the Google consent URL that starts authentication. After consent the server stores the grant under the given state as session id, or under a new session id it reports on the callback page."),
		mcp.WithString("state",
			mcp.Description("Session id to authenticate. Omit to let the server generate one."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(loginURLTool, common.InstrumentedToolHandler("auth_login_url", common.Operation{}, sc, handleLoginURL))

	statusTool := mcp.NewTool("auth_status",
		mcp.WithDescription("Report whether a session holds a usable Google OAuth grant. Never fails; problems are reported in the result."),
		common.WithSessionID(),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(statusTool, common.InstrumentedToolHandler("auth_status", common.Operation{}, sc, handleStatus))

	return nil
}

func handleLoginURL(_ context.Context, call *common.Call) (any, error) {
	state, err := call.String("state", "")
	if err != nil {
		return nil, err
	}
	if state != "" {
		if _, err := session.ParseKey(state); err != nil {
			return nil, auth.InvalidRequest(fmt.Sprintf("invalid state: %v", err))
		}
	}

	return LoginURLResult{
		URL:          call.ServerContext().Flow().LoginURL(state),
		State:        state,
		Instructions: "Open the URL in a browser and grant access. The callback page shows the session id to pass as sessionId.",
	}, nil
}

func handleStatus(ctx context.Context, call *common.Call) (any, error) {
	req, err := call.RequestedSession()
	if err != nil {
		return nil, err
	}
	return call.ServerContext().Status().Read(ctx, req), nil
}

package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/session"
)

const (
	// AuthStatusURI reports on the default session.
	AuthStatusURI = "auth://status"
	// AuthStatusTemplate reports on a named session.
	AuthStatusTemplate = "auth://status/{sessionId}"
)

// RegisterAuthResources registers the auth status resource and template.
func RegisterAuthResources(s *mcpserver.MCPServer, sc *server.ServerContext) {
	statusResource := mcp.NewResource(
		AuthStatusURI,
		"Authentication Status",
		mcp.WithResourceDescription("Whether the default session holds a usable Google OAuth grant"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(statusResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAuthStatus(ctx, request, sc)
	})

	statusTemplate := mcp.NewResourceTemplate(
		AuthStatusTemplate,
		"Session Authentication Status",
		mcp.WithTemplateDescription("Whether the given session holds a usable Google OAuth grant"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.AddResourceTemplate(statusTemplate, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAuthStatus(ctx, request, sc)
	})
}

func handleAuthStatus(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	st := sc.Status().Read(ctx, sessionFromURI(request.Params.URI))

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal auth status: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// sessionFromURI extracts the session segment of auth://status/{sessionId}.
// auth://status and auth://status/default both mean the default session.
func sessionFromURI(uri string) session.Requested {
	rest, ok := strings.CutPrefix(uri, AuthStatusURI+"/")
	if !ok {
		return session.None()
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		id = rest
	}
	return session.FromArgument(id)
}

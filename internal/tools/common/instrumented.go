package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/workspace-mcp/internal/auth"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
)

// HandlerFunc does the work of a tool and returns the envelope data.
type HandlerFunc func(ctx context.Context, call *Call) (any, error)

// Operation names the Google API operation behind a tool. A zero Operation
// means the tool makes no API call.
type Operation struct {
	Service string
	Name    string
}

// InstrumentedToolHandler adapts fn into an MCP tool handler. It wraps the
// result in the envelope, records a span, tool and Google API metrics, and
// writes an audit line.
//
// Usage:
//
//	s.AddTool(tool, common.InstrumentedToolHandler("gmail_get_message",
//		common.Operation{Service: instrumentation.ServiceGmail, Name: instrumentation.OperationGet}, sc, handleGetMessage))
func InstrumentedToolHandler(toolName string, op Operation, sc *server.ServerContext, fn HandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).WithSpanContext(ctx)
		if op.Service != "" {
			invocation.WithService(op.Service, op.Name)
		}

		call := NewCall(request, sc)
		fnCtx := ctx
		if op.Service != "" {
			var apiSpan trace.Span
			fnCtx, apiSpan = instrumentation.StartGoogleAPISpan(ctx, op.Service, op.Name)
			defer apiSpan.End()
		}
		data, err := fn(fnCtx, call)
		duration := time.Since(start)

		if !call.Session().IsZero() {
			invocation.WithSession(call.Session().String())
		}

		status := instrumentation.StatusSuccess
		var result *mcp.CallToolResult
		if err != nil {
			status = instrumentation.StatusError
			ee := ErrorOf(err)
			invocation.Complete(false, ee.Kind, err)
			instrumentation.SetSpanError(span, err)
			result = Failure(err)
		} else {
			invocation.Complete(true, "", nil)
			instrumentation.SetSpanSuccess(span)
			result = Success(data)
		}

		metrics := sc.Metrics()
		metrics.RecordToolInvocation(ctx, toolName, status, duration)
		// Auth failures never reach the API, so they are not API operations.
		if op.Service != "" && auth.KindOf(err) == "" {
			metrics.RecordGoogleAPIOperation(ctx, op.Service, op.Name, status, duration)
		}
		sc.AuditLogger().LogToolInvocation(invocation)

		return result, nil
	}
}

package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/workspace-mcp/internal/logging"
)

// ToolInvocation captures one MCP tool call for audit logging.
//
// Session holds the raw session id. It is hashed at log time unless the
// audit logger is configured to include session ids.
type ToolInvocation struct {
	Tool      string
	Session   string
	Service   string
	Operation string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	ErrorKind string
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation creates a new ToolInvocation with timing started.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithSession records the session the tool ran against.
func (ti *ToolInvocation) WithSession(id string) *ToolInvocation {
	ti.Session = id
	return ti
}

// WithService sets the Google service and operation.
func (ti *ToolInvocation) WithService(service, operation string) *ToolInvocation {
	ti.Service = service
	ti.Operation = operation
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	ti.SpanID = GetSpanID(ctx)
	return ti
}

// Complete marks the invocation as finished.
func (ti *ToolInvocation) Complete(success bool, kind string, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	ti.ErrorKind = kind
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// Status returns "success" or "error".
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

func (ti *ToolInvocation) attrs(includeSessionIDs bool) []any {
	args := []any{
		logging.Tool(ti.Tool),
		slog.Duration(logging.KeyDuration, ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.Session != "" {
		if includeSessionIDs {
			args = append(args, slog.String("session", ti.Session))
		} else {
			args = append(args, logging.Session(ti.Session))
		}
	}
	if ti.Service != "" {
		args = append(args, slog.String("service", ti.Service))
	}
	if ti.Operation != "" {
		args = append(args, logging.Operation(ti.Operation))
	}
	if ti.TraceID != "" {
		args = append(args, slog.String("trace_id", ti.TraceID), slog.String("span_id", ti.SpanID))
	}
	if ti.ErrorKind != "" {
		args = append(args, logging.Kind(ti.ErrorKind))
	}
	if ti.Error != "" {
		args = append(args, slog.String(logging.KeyError, ti.Error))
	}
	return args
}

// AuthEvent describes a step of the bootstrap flow worth an audit line.
type AuthEvent struct {
	// Name is e.g. "session_authenticated" or "exchange_failed".
	Name    string
	Session string
	Scopes  int
	Err     error
}

// AuditLogger writes audit lines for tool calls and bootstrap completions.
// A nil *AuditLogger is a no-op.
type AuditLogger struct {
	logger            *slog.Logger
	enabled           bool
	includeSessionIDs bool
}

// NewAuditLogger creates an AuditLogger. If logger is nil, slog.Default() is used.
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:            logger.With(slog.String(logging.KeyComponent, "audit")),
		enabled:           config.Enabled,
		includeSessionIDs: config.IncludeSessionIDs,
	}
}

// LogToolInvocation logs a completed tool invocation.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}
	if ti.Success {
		al.logger.Info("tool_executed", ti.attrs(al.includeSessionIDs)...)
	} else {
		al.logger.Warn("tool_failed", ti.attrs(al.includeSessionIDs)...)
	}
}

// LogAuthEvent logs a bootstrap flow event.
func (al *AuditLogger) LogAuthEvent(ev AuthEvent) {
	if al == nil || !al.enabled {
		return
	}
	args := []any{slog.Int("scopes", ev.Scopes)}
	if ev.Session != "" {
		if al.includeSessionIDs {
			args = append(args, slog.String("session", ev.Session))
		} else {
			args = append(args, logging.Session(ev.Session))
		}
	}
	if ev.Err != nil {
		al.logger.Warn(ev.Name, append(args, logging.Err(ev.Err))...)
		return
	}
	al.logger.Info(ev.Name, args...)
}

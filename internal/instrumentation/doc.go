// Package instrumentation provides OpenTelemetry instrumentation for the
// workspace-mcp server.
//
// This package enables observability through:
//   - OpenTelemetry metrics for HTTP requests, the OAuth bootstrap flow, client
//     authentication, token store access and Google API calls
//   - Distributed tracing for the code exchange, token store calls and tool invocations
//   - Prometheus metrics export via /metrics endpoint on a dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// OAuth Metrics:
//   - oauth_exchange_total: Counter of authorization code exchanges by result
//   - client_auth_total: Counter of authenticated client builds by result
//     (success, not_authenticated, token_expired, store_unavailable)
//
// Token Store Metrics:
//   - token_store_operations_total: Counter of store operations by operation and status
//   - token_store_operation_duration_seconds: Histogram of store operation durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Configuration
//
// Instrumentation is configured from the environment (see DefaultConfig):
// INSTRUMENTATION_ENABLED, METRICS_EXPORTER (prometheus, otlp, stdout),
// TRACING_EXPORTER (otlp, stdout, none), OTEL_EXPORTER_OTLP_ENDPOINT and
// OTEL_TRACES_SAMPLER_ARG.
//
// # Privacy
//
// Session identifiers never appear as metric labels. Audit logs carry a hashed
// session reference unless AUDIT_LOGGING_INCLUDE_SESSION_IDS is set.
package instrumentation

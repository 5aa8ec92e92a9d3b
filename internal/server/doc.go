// Package server wires the token lifecycle components together and serves
// them over HTTP.
//
// # Key Components
//
// ServerContext is built once from the validated configuration. It owns the
// token store, the session resolver, the client factory, the bootstrap flow
// and the status reader, and hands them to tools and resources.
//
// HTTPServer serves:
//   - /auth/login and /auth/callback (bootstrap flow)
//   - /healthz, /readyz and /healthz/detailed (readiness pings the token store)
//   - /mcp (streamable HTTP transport, only when an MCP server is attached)
//
// MetricsServer exposes Prometheus metrics on a separate port.
//
// # Security
//
// The redirect URI must be HTTPS except for loopback hosts. Auth responses
// carry the usual hardening headers and are never cached.
package server

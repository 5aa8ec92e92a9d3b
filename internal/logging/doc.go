// Package logging provides structured logging utilities for workspace-mcp.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Build the process logger once at startup:
//
//	logger := logging.New(logging.Options{Format: "json", Debug: false})
//
// Add standard attributes:
//
//	logger = logging.WithOperation(logger, "auth.callback")
//	logger.Info("session stored", logging.Session(key.String()))
//
// # Security Considerations
//
// Session identifiers act as bearer references to stored grants, so they are
// hashed before being logged. Token values are never logged; use SanitizeToken
// when the presence of a token matters.
package logging

// Package auth_tools provides MCP tools for the bootstrap flow: building the
// consent URL and checking a session's status.
package auth_tools

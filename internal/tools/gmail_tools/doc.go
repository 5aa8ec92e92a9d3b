// Package gmail_tools provides read-only MCP tools for Gmail.
package gmail_tools

// Package cmd implements the command-line interface for workspace-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server and the OAuth bootstrap endpoints
//   - auth login-url: Print the Google consent URL for a session
//   - auth status: Show whether a session holds a usable grant
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd

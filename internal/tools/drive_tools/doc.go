// Package drive_tools provides read-only MCP tools for Google Drive.
package drive_tools

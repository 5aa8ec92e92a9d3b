// Package sheets_tools provides read-only MCP tools for Google Sheets.
package sheets_tools

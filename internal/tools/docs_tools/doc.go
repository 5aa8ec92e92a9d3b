// Package docs_tools provides read-only MCP tools for Google Docs.
//
// Documents are returned as a plain-text projection: paragraph text in
// reading order, with table cells separated by tabs and rows by newlines.
package docs_tools

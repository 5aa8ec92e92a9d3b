// Package calendar_tools provides read-only MCP tools for Google Calendar.
package calendar_tools

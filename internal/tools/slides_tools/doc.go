// Package slides_tools provides read-only MCP tools for Google Slides.
package slides_tools

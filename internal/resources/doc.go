// Package resources provides MCP resources: read-only documents that MCP
// clients can fetch without calling a tool.
//
// auth://status and auth://status/{sessionId} report whether a session holds
// a usable grant. They never fail; problems are reported inside the document
// so clients can poll them for diagnostics.
//
// user://profile returns the Gmail profile of the default session.
package resources

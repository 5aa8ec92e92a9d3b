// Package common provides the plumbing shared by all MCP tools: argument
// binding, session resolution, the result envelope and instrumentation.
//
// Every tool answers with the same JSON envelope:
//
//	{"success": true, "data": ...}
//	{"success": false, "error": {"kind": "token_expired", "message": "..."}}
package common

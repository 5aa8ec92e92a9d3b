package instrumentation

import "strings"

// Routes served by the HTTP listener. Anything else is reported as PathOther
// so that scanners probing random paths cannot inflate the label set.
var knownPaths = map[string]bool{
	"/auth/login":    true,
	"/auth/callback": true,
	"/healthz":       true,
	"/readyz":        true,
	"/mcp":           true,
	"/metrics":       true,
}

// PathOther is the label used for paths outside the known route set.
const PathOther = "other"

// PathLabel maps a request path to a bounded metric label.
//
// Example:
//
//	PathLabel("/auth/callback")  // "/auth/callback"
//	PathLabel("/mcp/")           // "/mcp"
//	PathLabel("/wp-admin")       // "other"
func PathLabel(path string) string {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	if knownPaths[path] {
		return path
	}
	return PathOther
}

// Operation types for Google API metrics.
const (
	OperationList = "list"
	OperationGet  = "get"
)

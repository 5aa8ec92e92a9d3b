// Package config loads the process configuration for workspace-mcp.
//
// Values are layered, lowest precedence first:
//
//  1. built-in defaults (Default)
//  2. an optional YAML file (LoadFile)
//  3. environment variables (ApplyEnv)
//  4. command-line flags that were explicitly set (applied by the cmd package)
//
// The resulting Config is validated once at startup and then treated as
// read-only. Missing required values are fatal.
package config

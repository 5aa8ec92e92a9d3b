// Package session decides which stored grant a call runs against.
//
// A session identifier is an opaque string chosen by the caller (usually the
// OAuth state value) or generated at bootstrap. Callers may pass an explicit
// id; when they do not, the process-wide default configured at startup is used.
// The placeholder value "default" that some clients send means "no explicit
// session" and is translated to None at the argument boundary, so it never
// reaches the token store.
package session

// Package google builds OAuth2 configuration and authorized Google Workspace
// API clients.
//
// An authorized Client is built per call from a stored grant. It wraps the
// stored access token in a static token source: the transport never renews
// the grant on its own, so an expired token surfaces as an error instead of a
// silent refresh.
package google

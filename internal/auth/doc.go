// Package auth implements the session-scoped OAuth token lifecycle.
//
// The Flow bootstraps a session: it sends the user to the provider consent
// page, exchanges the returned authorization code and stores the grant under
// the session id carried in the OAuth state (or a freshly generated one).
//
// The ClientFactory turns a stored grant into an authorized client for a
// single call. It never refreshes: an expired grant is reported as
// token_expired and the user must bootstrap again.
//
// The StatusReader reports whether a session is authenticated without ever
// failing, so MCP clients can poll it safely.
//
// All failures carry an *Error with one of five kinds: invalid_request,
// not_authenticated, token_expired, auth_exchange_failed and store_unavailable.
package auth

// Package tokenstore persists OAuth grants keyed by session.
//
// Records are stored as JSON under "oauth_tokens:{session}" with a 30 day TTL.
// There is no delete, update-in-place or listing: a bootstrap completion for
// an existing session replaces the record, and stale records age out.
//
// Two backends are provided: Valkey for deployments, and an in-process map for
// development and tests.
package tokenstore

package tokenstore

import (
	"strings"
	"time"
)

// Record is the persisted form of an OAuth grant.
type Record struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	// ExpiresAt is the access token expiry in Unix seconds.
	ExpiresAt int64  `json:"expiresAt"`
	Scope     string `json:"scope,omitempty"`
	TokenType string `json:"tokenType,omitempty"`
}

// Expired reports whether the access token is no longer usable at now.
// A token is expired from its expiry second onwards.
func (r Record) Expired(now time.Time) bool {
	return now.Unix() >= r.ExpiresAt
}

// Expiry returns ExpiresAt as a time.
func (r Record) Expiry() time.Time {
	return time.Unix(r.ExpiresAt, 0).UTC()
}

// Scopes splits the space separated scope string.
func (r Record) Scopes() []string {
	return strings.Fields(r.Scope)
}

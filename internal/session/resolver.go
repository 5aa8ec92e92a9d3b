package session

import (
	"errors"
	"fmt"
)

// ErrNoDefaultSession is returned when no explicit session was requested and
// no default is configured.
var ErrNoDefaultSession = errors.New("no session requested and no default session configured")

// Requested is the optional session a caller asked for.
type Requested struct {
	id       string
	explicit bool
}

// None means the caller did not name a session.
func None() Requested {
	return Requested{}
}

// Explicit names a session. An empty id is treated as None.
func Explicit(id string) Requested {
	if id == "" {
		return None()
	}
	return Requested{id: id, explicit: true}
}

// FromArgument converts a raw tool or query argument into a Requested value.
// Empty strings and the placeholder "default" both mean None.
func FromArgument(raw string) Requested {
	if raw == "" || raw == Placeholder {
		return None()
	}
	return Explicit(raw)
}

// IsExplicit reports whether a session was named.
func (r Requested) IsExplicit() bool {
	return r.explicit
}

// ID returns the requested identifier, or "" for None.
func (r Requested) ID() string {
	return r.id
}

// Resolver picks the session key for a call. It holds no per-request state.
type Resolver struct {
	defaultKey Key
}

// NewResolver creates a Resolver with the given default session id.
// An empty defaultID is accepted; Resolve then fails for None requests.
func NewResolver(defaultID string) (*Resolver, error) {
	r := &Resolver{}
	if defaultID == "" {
		return r, nil
	}
	k, err := ParseKey(defaultID)
	if err != nil {
		return nil, fmt.Errorf("invalid default session id: %w", err)
	}
	r.defaultKey = k
	return r, nil
}

// Default returns the configured default key, which may be the zero Key.
func (r *Resolver) Default() Key {
	return r.defaultKey
}

// Resolve returns the explicit session when one was requested, otherwise the
// configured default. Resolving the same request twice yields the same key.
func (r *Resolver) Resolve(req Requested) (Key, error) {
	if req.IsExplicit() {
		return ParseKey(req.ID())
	}
	if r.defaultKey.IsZero() {
		return Key{}, ErrNoDefaultSession
	}
	return r.defaultKey, nil
}

package session

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/google/uuid"
)

// Placeholder is the argument value clients send when they want the
// configured default session. It is never a valid Key.
const Placeholder = "default"

// MaxKeyLength bounds session identifiers.
const MaxKeyLength = 256

var (
	// ErrEmptyKey is returned when a session id is empty.
	ErrEmptyKey = errors.New("session id is empty")

	// ErrReservedKey is returned for the placeholder value.
	ErrReservedKey = fmt.Errorf("session id %q is reserved", Placeholder)

	// ErrInvalidKey is returned when a session id contains unsupported characters or is too long.
	ErrInvalidKey = errors.New("session id is invalid")
)

// Key is a validated session identifier. The zero value is not a valid key.
type Key struct {
	id string
}

// ParseKey validates id and returns it as a Key.
func ParseKey(id string) (Key, error) {
	if id == "" {
		return Key{}, ErrEmptyKey
	}
	if id == Placeholder {
		return Key{}, ErrReservedKey
	}
	if len(id) > MaxKeyLength {
		return Key{}, fmt.Errorf("%w: longer than %d bytes", ErrInvalidKey, MaxKeyLength)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return Key{}, fmt.Errorf("%w: contains whitespace or control characters", ErrInvalidKey)
		}
	}
	return Key{id: id}, nil
}

// MustParseKey is like ParseKey but panics on error. Intended for tests and constants.
func MustParseKey(id string) Key {
	k, err := ParseKey(id)
	if err != nil {
		panic(err)
	}
	return k
}

// NewKey returns a fresh random session key (UUID v4).
func NewKey() Key {
	return Key{id: uuid.NewString()}
}

// String returns the raw identifier.
func (k Key) String() string {
	return k.id
}

// IsZero reports whether k is the zero value.
func (k Key) IsZero() bool {
	return k.id == ""
}

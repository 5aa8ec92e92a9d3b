package session

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "plain", id: "sess-42"},
		{name: "uuid", id: "8a6f3c1e-7a43-4c39-9f57-3b8e3c7a2d10"},
		{name: "email-like", id: "user@example.com"},
		{name: "empty", id: "", wantErr: ErrEmptyKey},
		{name: "placeholder", id: "default", wantErr: ErrReservedKey},
		{name: "whitespace", id: "a b", wantErr: ErrInvalidKey},
		{name: "newline", id: "a\nb", wantErr: ErrInvalidKey},
		{name: "too long", id: strings.Repeat("x", MaxKeyLength+1), wantErr: ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := ParseKey(tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, k.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, k.String())
		})
	}
}

func TestMustParseKey_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseKey("") })
	assert.NotPanics(t, func() { MustParseKey("ok") })
}

func TestNewKey(t *testing.T) {
	a := NewKey()
	b := NewKey()

	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a.String())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

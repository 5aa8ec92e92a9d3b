package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromArgument(t *testing.T) {
	assert.False(t, FromArgument("").IsExplicit())
	assert.False(t, FromArgument("default").IsExplicit())

	req := FromArgument("sess-42")
	assert.True(t, req.IsExplicit())
	assert.Equal(t, "sess-42", req.ID())
}

func TestExplicit_EmptyIsNone(t *testing.T) {
	assert.Equal(t, None(), Explicit(""))
}

func TestResolver_Resolve(t *testing.T) {
	r, err := NewResolver("operator")
	require.NoError(t, err)

	tests := []struct {
		name string
		req  Requested
		want string
	}{
		{name: "explicit wins", req: Explicit("sess-42"), want: "sess-42"},
		{name: "none uses default", req: None(), want: "operator"},
		{name: "placeholder uses default", req: FromArgument("default"), want: "operator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestResolver_Idempotent(t *testing.T) {
	r, err := NewResolver("operator")
	require.NoError(t, err)

	for _, req := range []Requested{None(), Explicit("sess-42")} {
		first, err := r.Resolve(req)
		require.NoError(t, err)
		second, err := r.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestResolver_NoDefault(t *testing.T) {
	r, err := NewResolver("")
	require.NoError(t, err)

	_, err = r.Resolve(None())
	assert.ErrorIs(t, err, ErrNoDefaultSession)

	k, err := r.Resolve(Explicit("sess-1"))
	require.NoError(t, err)
	assert.Equal(t, "sess-1", k.String())
}

func TestResolver_ExplicitInvalid(t *testing.T) {
	r, err := NewResolver("operator")
	require.NoError(t, err)

	_, err = r.Resolve(Explicit("has space"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestNewResolver_InvalidDefault(t *testing.T) {
	_, err := NewResolver("default")
	assert.ErrorIs(t, err, ErrReservedKey)
}

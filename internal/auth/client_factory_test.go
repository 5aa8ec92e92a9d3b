package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-mcp/internal/session"
	"github.com/teemow/workspace-mcp/internal/tokenstore"
)

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	key := session.MustParseKey("sess-42")
	expiresAt := int64(1700000000)

	store := newMemoryStore()
	require.NoError(t, store.Put(ctx, key, tokenstore.Record{
		AccessToken:  "a",
		RefreshToken: "b",
		ExpiresAt:    expiresAt,
		Scope:        "scope-a scope-b",
		TokenType:    "Bearer",
	}))

	conf := testOAuthConfig("http://127.0.0.1:0/token")

	t.Run("valid token", func(t *testing.T) {
		f := NewClientFactory(store, conf, WithFactoryClock(func() time.Time { return time.Unix(expiresAt-1, 0) }))
		client, err := f.Authenticate(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, key, client.Session())
		assert.Equal(t, "a", client.Token().AccessToken)
		assert.Equal(t, "b", client.Token().RefreshToken)
		assert.Equal(t, time.Unix(expiresAt, 0).UTC(), client.Token().Expiry)
		assert.Same(t, conf, client.OAuthConfig())
	})

	t.Run("expired at the expiry second", func(t *testing.T) {
		f := NewClientFactory(store, conf, WithFactoryClock(func() time.Time { return time.Unix(expiresAt, 0) }))
		_, err := f.Authenticate(ctx, key)
		require.ErrorIs(t, err, ErrTokenExpired)
		assert.Contains(t, MessageOf(err), "re-authenticate")
	})

	t.Run("absent", func(t *testing.T) {
		f := NewClientFactory(store, conf)
		_, err := f.Authenticate(ctx, session.MustParseKey("nobody"))
		require.ErrorIs(t, err, ErrNotAuthenticated)
		assert.Contains(t, MessageOf(err), LoginPath)
	})

	t.Run("store down", func(t *testing.T) {
		f := NewClientFactory(failingStore{err: errBackendDown}, conf)
		_, err := f.Authenticate(ctx, key)
		require.ErrorIs(t, err, ErrStoreUnavailable)
		assert.ErrorIs(t, err, errBackendDown)
		assert.NotErrorIs(t, err, ErrNotAuthenticated)
	})
}

func TestAuthenticateDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	key := session.MustParseKey("sess-1")
	store := newMemoryStore()
	rec := tokenstore.Record{AccessToken: "a", ExpiresAt: 10, TokenType: "Bearer"}
	require.NoError(t, store.Put(ctx, key, rec))

	f := NewClientFactory(store, testOAuthConfig("http://127.0.0.1:0/token"), WithFactoryClock(func() time.Time { return time.Unix(20, 0) }))
	_, err := f.Authenticate(ctx, key)
	require.ErrorIs(t, err, ErrTokenExpired)

	got, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec, got)
}

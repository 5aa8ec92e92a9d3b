package tokenstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-mcp/internal/session"
)

// failingBackend returns err from every operation.
type failingBackend struct {
	err error
}

func (f failingBackend) Set(context.Context, string, []byte, time.Duration) error { return f.err }
func (f failingBackend) Get(context.Context, string) ([]byte, bool, error)       { return nil, false, f.err }
func (f failingBackend) Ping(context.Context) error                              { return f.err }
func (f failingBackend) Close() error                                            { return nil }

func sampleRecord() Record {
	return Record{
		AccessToken:  "ya29.access",
		RefreshToken: "1//refresh",
		ExpiresAt:    1_900_000_000,
		Scope:        "a b c",
		TokenType:    "Bearer",
	}
}

func TestStore_GetBeforePut(t *testing.T) {
	s := New(NewMemoryBackend())

	_, found, err := s.Get(context.Background(), session.MustParseKey("sess-1"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	s := New(NewMemoryBackend())
	ctx := context.Background()
	key := session.MustParseKey("sess-42")

	require.NoError(t, s.Put(ctx, key, sampleRecord()))

	got, found, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sampleRecord(), got)
}

func TestStore_PutReplaces(t *testing.T) {
	s := New(NewMemoryBackend())
	ctx := context.Background()
	key := session.MustParseKey("sess-42")

	require.NoError(t, s.Put(ctx, key, sampleRecord()))
	updated := sampleRecord()
	updated.AccessToken = "ya29.second"
	require.NoError(t, s.Put(ctx, key, updated))

	got, found, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ya29.second", got.AccessToken)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	s := New(NewMemoryBackend())
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, session.MustParseKey("a"), sampleRecord()))

	_, found, err := s.Get(ctx, session.MustParseKey("b"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_KeyLayout(t *testing.T) {
	backend := NewMemoryBackend()
	s := New(backend)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, session.MustParseKey("sess-42"), sampleRecord()))

	raw, found, err := backend.Get(ctx, "oauth_tokens:sess-42")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{
		"accessToken": "ya29.access",
		"refreshToken": "1//refresh",
		"expiresAt": 1900000000,
		"scope": "a b c",
		"tokenType": "Bearer"
	}`, string(raw))
}

func TestStore_TTL(t *testing.T) {
	backend := NewMemoryBackend()
	now := time.Unix(1_700_000_000, 0)
	backend.now = func() time.Time { return now }
	s := New(backend)
	ctx := context.Background()
	key := session.MustParseKey("sess-42")

	require.NoError(t, s.Put(ctx, key, sampleRecord()))

	now = now.Add(DefaultTTL - time.Second)
	_, found, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(time.Second)
	_, found, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_MalformedRecord(t *testing.T) {
	backend := NewMemoryBackend()
	s := New(backend)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "oauth_tokens:broken", []byte("not json"), time.Hour))

	_, found, err := s.Get(ctx, session.MustParseKey("broken"))
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrMalformedRecord)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestStore_BackendFailure(t *testing.T) {
	cause := errors.New("connection refused")
	s := New(failingBackend{err: cause})
	ctx := context.Background()
	key := session.MustParseKey("sess-1")

	err := s.Put(ctx, key, sampleRecord())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)

	_, found, err := s.Get(ctx, key)
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.ErrorIs(t, s.Ping(ctx), ErrUnavailable)
}

func TestStore_ZeroKey(t *testing.T) {
	s := New(NewMemoryBackend())

	assert.ErrorIs(t, s.Put(context.Background(), session.Key{}, sampleRecord()), session.ErrEmptyKey)

	_, found, err := s.Get(context.Background(), session.Key{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRecord_Expired(t *testing.T) {
	rec := Record{ExpiresAt: 1_700_000_000}

	assert.False(t, rec.Expired(time.Unix(rec.ExpiresAt-1, 0)))
	assert.True(t, rec.Expired(time.Unix(rec.ExpiresAt, 0)))
	assert.True(t, rec.Expired(time.Unix(rec.ExpiresAt+1, 0)))
}

func TestRecord_Scopes(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Record{Scope: "a b c"}.Scopes())
	assert.Empty(t, Record{}.Scopes())
}

func mustKey(t *testing.T, id string) session.Key {
	t.Helper()
	k, err := session.ParseKey(id)
	require.NoError(t, err)
	return k
}

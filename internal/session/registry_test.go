package session

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(ttl time.Duration) (*Registry, *time.Time) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(ttl)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRegistry_CreateValidateEnd(t *testing.T) {
	r, _ := newTestRegistry(DefaultTTL)

	id, err := r.Create("alice")
	require.NoError(t, err)
	assert.True(t, r.Validate(id))

	name, ok := r.UsernameOf(id)
	require.True(t, ok)
	assert.Equal(t, "alice", name)

	r.End(id)
	assert.False(t, r.Validate(id))
	_, ok = r.UsernameOf(id)
	assert.False(t, ok)
}

func TestRegistry_AbsoluteExpiry(t *testing.T) {
	r, now := newTestRegistry(time.Hour)

	id, err := r.Create("alice")
	require.NoError(t, err)

	// Activity must not slide the expiry.
	*now = now.Add(59 * time.Minute)
	assert.True(t, r.Validate(id))

	*now = now.Add(time.Minute + time.Second)
	assert.False(t, r.Validate(id))

	// Lazy GC removed the record entirely.
	r.mu.Lock()
	_, present := r.sessions[id]
	r.mu.Unlock()
	assert.False(t, present)
}

func TestRegistry_TokensAreURLSafeAnd256Bit(t *testing.T) {
	r, _ := newTestRegistry(DefaultTTL)

	id, err := r.Create("alice")
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(id)
	require.NoError(t, err)
	assert.Len(t, raw, tokenBytes)
}

func TestRegistry_MultipleSessionsPerUsername(t *testing.T) {
	r, _ := newTestRegistry(DefaultTTL)

	id1, err := r.Create("alice")
	require.NoError(t, err)
	id2, err := r.Create("alice")
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	assert.True(t, r.Validate(id1))
	assert.True(t, r.Validate(id2))

	r.End(id1)
	assert.False(t, r.Validate(id1))
	assert.True(t, r.Validate(id2))
}

func TestRegistry_UnknownTokenInvalid(t *testing.T) {
	r, _ := newTestRegistry(DefaultTTL)
	assert.False(t, r.Validate("no-such-session"))
	r.End("no-such-session") // must not panic
}

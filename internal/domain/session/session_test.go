package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestManager(maxAge time.Duration) (*Manager, *clock) {
	c := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(maxAge)
	m.now = c.now
	return m, c
}

func TestCreateAndLookup(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	s, err := m.Create("alice")
	require.NoError(t, err)
	assert.Len(t, s.Token, 43)

	got, err := m.Lookup(s.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = m.Lookup("missing")
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestTokensAreUnique(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		s, err := m.Create("alice")
		require.NoError(t, err)
		assert.False(t, seen[s.Token])
		seen[s.Token] = true
	}
}

func TestExpiry(t *testing.T) {
	m, c := newTestManager(time.Hour)
	s, err := m.Create("alice")
	require.NoError(t, err)

	c.t = c.t.Add(59 * time.Minute)
	_, err = m.Lookup(s.Token)
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Minute)
	_, err = m.Lookup(s.Token)
	assert.ErrorIs(t, err, ErrExpired)

	_, err = m.Lookup(s.Token)
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestRevokeAndSweep(t *testing.T) {
	m, c := newTestManager(time.Hour)

	a, _ := m.Create("alice")
	m.Create("alice")
	b, _ := m.Create("bob")

	m.Revoke(a.Token)
	_, err := m.Lookup(a.Token)
	assert.ErrorIs(t, err, ErrUnknown)

	assert.Equal(t, 1, m.RevokeUser("alice"))

	c.t = c.t.Add(2 * time.Hour)
	assert.Equal(t, 1, m.Sweep())
	_, err = m.Lookup(b.Token)
	assert.ErrorIs(t, err, ErrUnknown)
}

package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/store"
)

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	s, err := store.OpenBadgerInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	r, err := NewRoom(s)
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return r
}

func TestPostAndMessagesInOrder(t *testing.T) {
	ctx := context.Background()
	r := newTestRoom(t)

	for _, text := range []string{"first", "second", "third"} {
		_, err := r.Post(ctx, "alice", "Alice", text)
		require.NoError(t, err)
	}

	msgs, err := r.Messages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Message)
	assert.Equal(t, "third", msgs[2].Message)
	assert.NotEmpty(t, msgs[0].ID)

	recent, err := r.Messages(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "second", recent[0].Message)
}

func TestPostSanitizes(t *testing.T) {
	r := newTestRoom(t)

	msg, err := r.Post(context.Background(), "bob", "Bob", `hi <script>alert(1)</script><b>there</b>`)
	require.NoError(t, err)
	assert.Equal(t, "hi there", msg.Message)

	_, err = r.Post(context.Background(), "bob", "Bob", "<script></script>")
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestPostRejectsEmpty(t *testing.T) {
	r := newTestRoom(t)

	_, err := r.Post(context.Background(), "bob", "Bob", "   ")
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

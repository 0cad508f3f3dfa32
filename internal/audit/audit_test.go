package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/store"
)

func TestNewEvent(t *testing.T) {
	ev := NewEvent("alice", ActionUploadFile, "common/report.pdf", Success)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "alice", ev.Username)
	assert.Equal(t, ActionUploadFile, ev.Action)
	assert.Equal(t, Success, ev.Outcome)
	assert.WithinDuration(t, time.Now(), ev.Timestamp, time.Minute)
}

func TestStoreSinkRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenJSON(t.TempDir())
	require.NoError(t, err)

	sink, err := NewStoreSink(s)
	require.NoError(t, err)

	first := NewEvent("alice", ActionLogin, "", Success)
	second := NewEvent("bob", ActionDeleteFile, "personal/x", Failure)
	second.Timestamp = first.Timestamp.Add(time.Second)

	require.NoError(t, sink.Record(ctx, second))
	require.NoError(t, sink.Record(ctx, first))

	events, err := sink.Events(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first.ID, events[0].ID)
	assert.Equal(t, second.ID, events[1].ID)

	recent, err := sink.Events(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "bob", recent[0].Username)
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewLogSink(zap.New(core))

	require.NoError(t, sink.Record(context.Background(), NewEvent("alice", ActionLogin, "", Success)))

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].ContextMap()["username"])
}

func TestMultiDeliversToAllSinks(t *testing.T) {
	var calls int
	ok := SinkFunc(func(context.Context, Event) error { calls++; return nil })
	bad := SinkFunc(func(context.Context, Event) error { calls++; return errors.New("disk full") })

	err := Multi{bad, ok}.Record(context.Background(), NewEvent("a", ActionLogin, "", Success))

	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 2, calls)
}

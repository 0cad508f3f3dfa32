package audit

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/store"
)

// Collection is the store collection holding audit events.
const Collection = "logs"

// StoreSink persists events and reads them back for the admin log view.
type StoreSink struct {
	coll store.Collection
}

// NewStoreSink opens the audit collection of s.
func NewStoreSink(s store.Store) (*StoreSink, error) {
	coll, err := s.Collection(Collection)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	return &StoreSink{coll: coll}, nil
}

// Record upserts ev under its ID.
func (s *StoreSink) Record(ctx context.Context, ev Event) error {
	if err := store.Save(ctx, s.coll, ev.ID, ev); err != nil {
		return fmt.Errorf("audit: record %s: %w", ev.Action, err)
	}
	return nil
}

// Events returns stored events in chronological order. A positive limit
// keeps only the most recent ones.
func (s *StoreSink) Events(ctx context.Context, limit int) ([]Event, error) {
	events, err := store.All[Event](ctx, s.coll)
	if err != nil {
		return nil, fmt.Errorf("audit: read events: %w", err)
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].ID < events[j].ID
	})

	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

// LogSink writes events to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a sink logging at Info level.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("audit")}
}

// Record never fails.
func (s *LogSink) Record(_ context.Context, ev Event) error {
	s.logger.Info("audit",
		zap.String("id", ev.ID),
		zap.String("username", ev.Username),
		zap.String("action", ev.Action),
		zap.String("outcome", string(ev.Outcome)),
		zap.String("details", ev.Details),
		zap.Time("timestamp", ev.Timestamp),
	)
	return nil
}

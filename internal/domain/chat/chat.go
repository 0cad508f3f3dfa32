// Package chat stores the shared chat room.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/shared/utils"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/store"
)

// Collection is the store collection holding messages.
const Collection = "chat"

// ErrInvalidMessage is returned for empty or oversized messages.
var ErrInvalidMessage = errors.New("invalid message")

// Message is one chat line.
type Message struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Room appends and reads messages.
type Room struct {
	coll   store.Collection
	policy *bluemonday.Policy
	now    func() time.Time
}

// NewRoom opens the chat collection of s.
func NewRoom(s store.Store) (*Room, error) {
	coll, err := s.Collection(Collection)
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	return &Room{
		coll:   coll,
		policy: bluemonday.StrictPolicy(),
		now:    time.Now,
	}, nil
}

// Post validates, sanitizes and stores a message from username.
func (r *Room) Post(ctx context.Context, username, name, text string) (Message, error) {
	if err := utils.ValidateMessage(text); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	clean := strings.TrimSpace(r.policy.Sanitize(text))
	if clean == "" {
		return Message{}, fmt.Errorf("%w: empty after sanitizing", ErrInvalidMessage)
	}

	msg := Message{
		ID:        uuid.NewString(),
		Username:  username,
		Name:      name,
		Message:   clean,
		Timestamp: r.now().UTC(),
	}
	if err := store.Save(ctx, r.coll, msg.ID, msg); err != nil {
		return Message{}, fmt.Errorf("chat: save: %w", err)
	}
	return msg, nil
}

// Messages returns messages oldest first. A positive limit keeps only the
// most recent ones.
func (r *Room) Messages(ctx context.Context, limit int) ([]Message, error) {
	msgs, err := store.All[Message](ctx, r.coll)
	if err != nil {
		return nil, fmt.Errorf("chat: read: %w", err)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

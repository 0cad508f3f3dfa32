// Package id provides ULID generation for records that need sortable IDs.
//
// ULIDs are lexicographically sortable by creation time, so audit events
// and other append-only records can be ordered by ID alone. IDs carry a
// short type prefix (evt_*, usr_*) to keep logs readable.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventID identifies an audit event
type EventID string

// UserID identifies a user account
type UserID string

const (
	EventPrefix = "evt"
	UserPrefix  = "usr"
)

// Generator generates monotonic ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
	now       func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator whose IDs increase strictly within the
// same millisecond.
func NewGenerator() *Generator {
	return &Generator{entropy: ulid.Monotonic(rand.Reader, 0), now: time.Now}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewEventID generates a new audit event ID
func NewEventID() EventID {
	return EventID(Default().GenerateWithPrefix(EventPrefix))
}

// NewUserID generates a new user ID
func NewUserID() UserID {
	return UserID(Default().GenerateWithPrefix(UserPrefix))
}

func (id EventID) String() string { return string(id) }
func (id UserID) String() string  { return string(id) }

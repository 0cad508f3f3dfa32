package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// ErrNotFound is returned when a key has no record.
var ErrNotFound = errors.New("store: record not found")

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendBadger = "badger"
)

// Store hands out collections.
type Store interface {
	Collection(name string) (Collection, error)
	Close() error
}

// Collection is a set of records addressed by key.
type Collection interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Scan(ctx context.Context, fn func(key string, value []byte) error) error
}

// Open opens the named backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return OpenJSON(dir)
	case BackendBadger:
		return OpenBadger(dir)
	}
	return nil, fmt.Errorf("store: unknown backend %q", backend)
}

func checkCollectionName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\.\x00") {
		return fmt.Errorf("store: invalid collection name %q", name)
	}
	return nil
}

// Load decodes the record stored under key.
func Load[T any](ctx context.Context, c Collection, key string) (T, error) {
	var v T
	raw, err := c.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := sonic.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("store: decode %q: %w", key, err)
	}
	return v, nil
}

// Save encodes v and stores it under key.
func Save(ctx context.Context, c Collection, key string, v any) error {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}
	return c.Put(ctx, key, raw)
}

// All decodes every record of the collection.
func All[T any](ctx context.Context, c Collection) ([]T, error) {
	var out []T
	err := c.Scan(ctx, func(key string, value []byte) error {
		var v T
		if err := sonic.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("store: decode %q: %w", key, err)
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

// Count returns the number of records in the collection.
func Count(ctx context.Context, c Collection) (int, error) {
	n := 0
	err := c.Scan(ctx, func(string, []byte) error {
		n++
		return nil
	})
	return n, err
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
)

// JSONStore keeps each collection in <dir>/<name>.json.
type JSONStore struct {
	dir string

	mu          sync.Mutex
	collections map[string]*jsonCollection
}

// OpenJSON creates dir if needed and returns a file-backed store.
func OpenJSON(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &JSONStore{dir: dir, collections: make(map[string]*jsonCollection)}, nil
}

// Collection loads (once) and returns the named collection.
func (s *JSONStore) Collection(name string) (Collection, error) {
	if err := checkCollectionName(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c, nil
	}

	c := &jsonCollection{path: filepath.Join(s.dir, name+".json")}
	if err := c.load(); err != nil {
		return nil, err
	}
	s.collections[name] = c
	return c, nil
}

// Close is a no-op; every write is already on disk.
func (s *JSONStore) Close() error { return nil }

type jsonCollection struct {
	path string

	mu      sync.RWMutex
	records map[string]json.RawMessage
}

func (c *jsonCollection) load() error {
	c.records = make(map[string]json.RawMessage)

	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read %s: %w", c.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(data, &c.records); err != nil {
		return fmt.Errorf("store: parse %s: %w", c.path, err)
	}
	return nil
}

func (c *jsonCollection) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	raw, ok := c.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (c *jsonCollection) Put(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("store: value for %q is not JSON", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev, had := c.records[key]
	c.records[key] = append(json.RawMessage(nil), value...)
	if err := c.flush(); err != nil {
		if had {
			c.records[key] = prev
		} else {
			delete(c.records, key)
		}
		return err
	}
	return nil
}

func (c *jsonCollection) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := c.records[key]
	if !ok {
		return ErrNotFound
	}
	delete(c.records, key)
	if err := c.flush(); err != nil {
		c.records[key] = prev
		return err
	}
	return nil
}

// Scan visits records in key order over a snapshot of the collection.
func (c *jsonCollection) Scan(ctx context.Context, fn func(key string, value []byte) error) error {
	c.mu.RLock()
	keys := make([]string, 0, len(c.records))
	snapshot := make(map[string][]byte, len(c.records))
	for k, v := range c.records {
		keys = append(keys, k)
		snapshot[k] = v
	}
	c.mu.RUnlock()

	sort.Strings(keys)
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(k, snapshot[k]); err != nil {
			return err
		}
	}
	return nil
}

// flush writes the collection through a temp file and rename. Callers hold mu.
func (c *jsonCollection) flush() error {
	data, err := sonic.ConfigStd.MarshalIndent(c.records, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", c.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: replace %s: %w", c.path, err)
	}
	return nil
}

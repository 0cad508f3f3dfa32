package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps every collection in one badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a badger database in dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger at %s: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

// OpenBadgerInMemory opens a badger database that never touches disk.
func OpenBadgerInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open in-memory badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Collection returns a view of the keys under "<name>/".
func (s *BadgerStore) Collection(name string) (Collection, error) {
	if err := checkCollectionName(name); err != nil {
		return nil, err
	}
	return &badgerCollection{db: s.db, prefix: []byte(name + "/")}, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

type badgerCollection struct {
	db     *badger.DB
	prefix []byte
}

func (c *badgerCollection) key(k string) []byte {
	return append(append([]byte(nil), c.prefix...), k...)
}

func (c *badgerCollection) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

func (c *badgerCollection) Put(_ context.Context, key string, value []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(c.key(key), value)
	})
}

func (c *badgerCollection) Delete(_ context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(c.key(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(c.key(key))
	})
}

// Scan visits records in key order.
func (c *badgerCollection) Scan(ctx context.Context, fn func(key string, value []byte) error) error {
	return c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = c.prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			key := string(item.Key()[len(c.prefix):])
			if err := fn(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

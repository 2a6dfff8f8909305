// Package embedded implements db.Store in-process on buntdb. JSON documents
// are stored as strings and queried with gjson, so profiles can be searched
// without a Redis server (CLI seeding, tests, single-node deployments).
package embedded

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/buntdb"
	"github.com/tidwall/gjson"

	"github.com/jagritiyatra/alumnidex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// InMemory is the path that keeps the database in memory only.
const InMemory = ":memory:"

// Store implements db.Store on an embedded buntdb database.
type Store struct {
	db *buntdb.DB

	mu      sync.RWMutex
	indexes map[string]*db.IndexDefinition
	closed  bool
}

// Open opens (or creates) the database at path. Use InMemory for a volatile store.
func Open(path string) (*Store, error) {
	if path == "" {
		path = InMemory
	}
	bdb, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open embedded store: %w", err)
	}
	return &Store{db: bdb, indexes: make(map[string]*db.IndexDefinition)}, nil
}

// Ping reports whether the store is still open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return db.ErrClosed
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	_ = s.db.Close()
}

// WaitForReady returns immediately: an open embedded store is always ready.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// --- JSON documents ---

// JSONSet stores a whole document. Only the root path is supported.
func (s *Store) JSONSet(ctx context.Context, key, path string, data []byte) error {
	return s.JSONSetMulti(ctx, []db.JSONSetItem{{Key: key, Path: path, Data: data}})
}

// JSONSetMulti stores several documents in one transaction.
func (s *Store) JSONSetMulti(_ context.Context, items []db.JSONSetItem) error {
	if len(items) == 0 {
		return nil
	}
	for _, item := range items {
		if item.Path != "$" && item.Path != "." {
			return &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("unsupported path %q", item.Path)}
		}
		if !gjson.ValidBytes(item.Data) {
			return &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("key %s: invalid JSON", item.Key)}
		}
	}
	err := s.db.Update(func(tx *buntdb.Tx) error {
		for _, item := range items {
			if _, _, err := tx.Set(item.Key, string(item.Data), nil); err != nil {
				return fmt.Errorf("key %s: %w", item.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// JSONGet returns the document at key. With paths, each path is evaluated and
// the results are returned as a JSON array.
func (s *Store) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	raw, err := s.get(key, db.OpJSONGet)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return []byte(raw), nil
	}
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "$" || p == "." {
			parts = append(parts, raw)
			continue
		}
		res := gjson.Get(raw, toGJSONPath(p))
		if !res.Exists() {
			parts = append(parts, "null")
			continue
		}
		parts = append(parts, res.Raw)
	}
	return []byte("[" + strings.Join(parts, ",") + "]"), nil
}

// Exists checks if a key exists.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	_, err := s.get(key, db.OpExists)
	if errors.Is(err, db.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// --- key/value ---

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	v, err := s.get(key, db.OpGet)
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

// Set stores a value at the given key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores a value with an expiration. A non-positive ttl stores without expiry.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var opts *buntdb.SetOptions
	if ttl > 0 {
		opts = &buntdb.SetOptions{Expires: true, TTL: ttl}
	}
	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, string(value), opts)
		return err
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del deletes a key. Deleting a missing key is not an error.
func (s *Store) Del(_ context.Context, key string) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key)
		return err
	})
	if err != nil && !errors.Is(err, buntdb.ErrNotFound) {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

func (s *Store) get(key, op string) (string, error) {
	var v string
	err := s.db.View(func(tx *buntdb.Tx) error {
		var err error
		v, err = tx.Get(key)
		return err
	})
	if err != nil {
		if errors.Is(err, buntdb.ErrNotFound) {
			return "", db.ErrKeyNotFound
		}
		return "", &db.Error{Op: op, Err: err}
	}
	return v, nil
}

// toGJSONPath converts the JSONPath subset used by index definitions
// ($.a.b, $.list[*], $.list[*].field) to gjson syntax.
func toGJSONPath(p string) string {
	p = strings.TrimPrefix(p, "$")
	p = strings.TrimPrefix(p, ".")
	p = strings.TrimSuffix(p, "[*]")
	return strings.ReplaceAll(p, "[*].", ".#.")
}

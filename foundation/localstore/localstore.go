// Package localstore provides the persisted client side key/value state of
// the dashboard, such as the selected theme. It is backed by a bolt file.
package localstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// bucket holds every key written by the dashboard.
var bucket = []byte("local_storage")

// ErrClosed is returned when the store is used after Close.
var ErrClosed = errors.New("local storage is closed")

// Store is a persisted string key/value store.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the store at the specified path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating store folder: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening store %q: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for the key and whether it exists.
func (s *Store) Get(key string) (string, bool, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if v := b.Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseNotOpen) {
			return "", false, ErrClosed
		}
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}

	if value == nil {
		return "", false, nil
	}

	return string(value), true, nil
}

// Set writes the value for the key.
func (s *Store) Set(key string, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseNotOpen) {
			return ErrClosed
		}
		return fmt.Errorf("set %q: %w", key, err)
	}

	return nil
}

// =============================================================================

// Scope is a view of the store where every key is prefixed by a name. Each
// browser session of the viewer keeps its own keys this way.
type Scope struct {
	store *Store
	name  string
}

// Scope returns a view of the store limited to the named prefix.
func (s *Store) Scope(name string) Scope {
	return Scope{store: s, name: name}
}

// Get returns the value for the key and whether it exists.
func (sc Scope) Get(key string) (string, bool, error) {
	return sc.store.Get(sc.key(key))
}

// Set writes the value for the key.
func (sc Scope) Set(key string, value string) error {
	return sc.store.Set(sc.key(key), value)
}

func (sc Scope) key(key string) string {
	return sc.name + "/" + key
}

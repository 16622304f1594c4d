package kv

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BucketName is the bolt bucket holding all entries.
const BucketName = "kv"

// BoltStore implements Store on a single bbolt bucket.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the bolt file at path.
// PRE: the parent directory of path exists
// POST: the kv bucket exists; caller must Close the store
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Get retrieves the value under key.
func (s *BoltStore) Get(_ context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(BucketName)).Get([]byte(key)); v != nil {
			// v is only valid inside the transaction.
			value, ok = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, ok, nil
}

// Set stores value under key.
func (s *BoltStore) Set(_ context.Context, key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketName)).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

// Close releases the bolt file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

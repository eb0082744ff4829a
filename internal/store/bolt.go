package store

import (
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const boltBucketLocal = "local" // key -> raw string value

var errBucketMissing = errors.New("bolt bucket missing")

// BoltStore is a file-backed KV on top of bbolt.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the database file at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketLocal))
		return err
	}); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Get(key string) (string, error) {
	var (
		value string
		found bool
	)

	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketLocal))
		if bucket == nil {
			return errBucketMissing
		}

		// Values are only valid inside the transaction; copy out.
		if v := bucket.Get([]byte(key)); v != nil {
			value = string(v)
			found = true
		}

		return nil
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrNotFound
	}

	return value, nil
}

func (b *BoltStore) Set(key, value string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketLocal))
		if bucket == nil {
			return errBucketMissing
		}

		return bucket.Put([]byte(key), []byte(value))
	})
}

func (b *BoltStore) Delete(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketLocal))
		if bucket == nil {
			return errBucketMissing
		}

		return bucket.Delete([]byte(key))
	})
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}

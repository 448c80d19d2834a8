package store

import (
	"bytes"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// bucketKV holds every key of a BoltKV.
var bucketKV = []byte("gitlet")

// BoltKV implements KV on a bbolt database file.
type BoltKV struct{ *bbolt.DB }

// OpenBolt opens (creating if needed) the database at path.
func OpenBolt(path string) (*BoltKV, error) {
	db, err := bbolt.Open(path, 0644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucketKV)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltKV{db}, nil
}

// Close closes the database.
func (db *BoltKV) Close() error { return db.DB.Close() }

// Get implements KV.Get.
func (db *BoltKV) Get(key string) ([]byte, error) {
	var value []byte
	err := db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketKV).Get([]byte(key))
		if v == nil {
			return &KeyError{Key: key}
		}
		// v is only valid for the life of the transaction.
		value = append([]byte{}, v...)
		return nil
	})
	return value, err
}

// Put implements KV.Put.
func (db *BoltKV) Put(key string, value []byte) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketKV).Put([]byte(key), value)
	})
}

// Delete implements KV.Delete.
func (db *BoltKV) Delete(key string) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketKV).Delete([]byte(key))
	})
}

// List implements KV.List. bbolt keeps keys in byte order, so the result is
// already sorted.
func (db *BoltKV) List(prefix string) ([]string, error) {
	var keys []string
	p := []byte(prefix)
	err := db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketKV).Cursor()
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, err
}

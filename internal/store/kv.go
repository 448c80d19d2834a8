// Package store provides the key-value persistence used for refs, the
// staging area and the commit index.
//
// Keys are slash-separated paths such as "refs/heads/master". Three engines
// implement KV:
//   - MemoryKV: in-process map, used by tests
//   - FileKV: one file per key under a directory (the on-disk repository layout)
//   - BoltKV: a single bbolt database file
package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("key not found")

// KV is a minimal key-value store over slash-separated string keys.
type KV interface {
	// Get returns the value for key or an error wrapping ErrNotFound.
	Get(key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// List returns all keys beginning with prefix, sorted.
	List(prefix string) ([]string, error)
}

// Has reports whether key is present in kv.
func Has(kv KV, key string) (bool, error) {
	_, err := kv.Get(key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// MemoryKV implements KV in memory.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

// Get implements KV.Get.
func (m *MemoryKV) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, &KeyError{Key: key}
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put implements KV.Put.
func (m *MemoryKV) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

// Delete implements KV.Delete.
func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// List implements KV.List.
func (m *MemoryKV) List(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// KeyError reports a missing key. It matches ErrNotFound with errors.Is.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string { return "key not found: " + e.Key }

// Is lets errors.Is(err, ErrNotFound) succeed.
func (e *KeyError) Is(target error) bool { return target == ErrNotFound }

package cas

import (
	"fmt"
)

// ObjectStore hashes and stores immutable byte payloads (blobs and encoded
// commits) in a CAS backend.
type ObjectStore struct {
	backend CAS
}

// NewObjectStore wraps a CAS backend.
func NewObjectStore(backend CAS) *ObjectStore {
	return &ObjectStore{backend: backend}
}

// Put stores data and returns its id. Storing bytes that are already present
// performs no write.
func (s *ObjectStore) Put(data []byte) (Hash, error) {
	h := SumB3(data)
	ok, err := s.backend.Has(h)
	if err != nil {
		return Hash{}, fmt.Errorf("put object: %w", err)
	}
	if ok {
		return h, nil
	}
	if err := s.backend.Put(h, data); err != nil {
		return Hash{}, fmt.Errorf("put object %s: %w", h.Short(12), err)
	}
	return h, nil
}

// Get returns the bytes stored under id, or an error wrapping
// ErrObjectNotFound.
func (s *ObjectStore) Get(id Hash) ([]byte, error) {
	return s.backend.Get(id)
}

// Exists reports whether an object is stored under id.
func (s *ObjectStore) Exists(id Hash) (bool, error) {
	return s.backend.Has(id)
}

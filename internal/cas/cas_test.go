package cas

import (
	"bytes"
	"errors"
	"testing"
)

func TestSumB3(t *testing.T) {
	data := []byte("hello world")
	hash1 := SumB3(data)
	hash2 := SumB3(data)

	if hash1 != hash2 {
		t.Error("Same data should produce same hash")
	}

	hash3 := SumB3([]byte("hello world!"))
	if hash1 == hash3 {
		t.Error("Different data should produce different hashes")
	}
}

func TestParseHash(t *testing.T) {
	h := SumB3([]byte("parse me"))
	parsed, err := ParseHash(h.String())
	if err != nil {
		t.Fatalf("ParseHash failed: %v", err)
	}
	if parsed != h {
		t.Errorf("ParseHash round trip mismatch: %s != %s", parsed, h)
	}

	if _, err := ParseHash("abc"); err == nil {
		t.Error("ParseHash should reject short input")
	}
	if _, err := ParseHash(string(bytes.Repeat([]byte("z"), 64))); err == nil {
		t.Error("ParseHash should reject non-hex input")
	}
}

func TestHashShort(t *testing.T) {
	h := SumB3([]byte("short"))
	if got := h.Short(7); len(got) != 7 || got != h.String()[:7] {
		t.Errorf("Short(7) = %q", got)
	}
	if got := h.Short(0); got != h.String() {
		t.Errorf("Short(0) should return full hash, got %q", got)
	}
	if !(Hash{}).IsZero() || h.IsZero() {
		t.Error("IsZero reported wrong value")
	}
}

func TestMemoryCAS(t *testing.T) {
	cas := NewMemoryCAS()
	data := []byte("test data")
	hash := SumB3(data)

	has, err := cas.Has(hash)
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if has {
		t.Error("Empty CAS should not have any data")
	}

	_, err = cas.Get(hash)
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Get on missing hash: expected ErrObjectNotFound, got %v", err)
	}

	if err := cas.Put(hash, data); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	has, err = cas.Has(hash)
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !has {
		t.Error("CAS should have data after Put")
	}

	retrieved, err := cas.Get(hash)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(data, retrieved) {
		t.Error("Retrieved data should match original")
	}

	wrongHash := SumB3([]byte("different data"))
	if err := cas.Put(wrongHash, data); err == nil {
		t.Error("Put should fail with mismatched hash")
	}
}

func TestObjectStoreRoundTrip(t *testing.T) {
	backend := NewMemoryCAS()
	store := NewObjectStore(backend)

	inputs := [][]byte{
		[]byte("A"),
		[]byte(""),
		[]byte("line one\nline two\n"),
		{0x00, 0xff, 0x28, 0xb5, 0x2f, 0xfd},
	}
	for _, in := range inputs {
		id, err := store.Put(in)
		if err != nil {
			t.Fatalf("Put(%q) failed: %v", in, err)
		}
		if id != SumB3(in) {
			t.Errorf("Put(%q) returned %s, want content hash", in, id)
		}
		out, err := store.Get(id)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", id, err)
		}
		if !bytes.Equal(in, out) {
			t.Errorf("Get(Put(%q)) = %q", in, out)
		}
		ok, err := store.Exists(id)
		if err != nil || !ok {
			t.Errorf("Exists(%s) = %v, %v", id, ok, err)
		}
	}
}

func TestObjectStorePutIdempotent(t *testing.T) {
	backend := NewMemoryCAS()
	store := NewObjectStore(backend)

	id1, err := store.Put([]byte("same bytes"))
	if err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	id2, err := store.Put([]byte("same bytes"))
	if err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("ids differ: %s vs %s", id1, id2)
	}
	if backend.Len() != 1 {
		t.Errorf("expected one stored object, got %d", backend.Len())
	}
}

func TestObjectStoreMissing(t *testing.T) {
	store := NewObjectStore(NewMemoryCAS())
	_, err := store.Get(SumB3([]byte("nope")))
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
	ok, err := store.Exists(SumB3([]byte("nope")))
	if err != nil || ok {
		t.Errorf("Exists on missing object = %v, %v", ok, err)
	}
}

func TestMemoryCASConcurrency(t *testing.T) {
	cas := NewMemoryCAS()
	data := []byte("concurrent test data")
	hash := SumB3(data)

	done := make(chan bool, 10)

	for i := 0; i < 5; i++ {
		go func() {
			defer func() { done <- true }()
			if err := cas.Put(hash, data); err != nil {
				t.Errorf("Concurrent Put failed: %v", err)
			}
		}()
	}

	for i := 0; i < 5; i++ {
		go func() {
			defer func() { done <- true }()
			_, _ = cas.Has(hash)
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	if cas.Len() != 1 {
		t.Errorf("expected one object, got %d", cas.Len())
	}
}

func BenchmarkSumB3(b *testing.B) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i % 256)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = SumB3(data)
	}
}

func BenchmarkObjectStorePut(b *testing.B) {
	store := NewObjectStore(NewMemoryCAS())
	data := []byte("benchmark data")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Put(append(data, byte(i%256)))
	}
}

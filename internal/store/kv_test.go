package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func engines(t *testing.T) map[string]KV {
	t.Helper()

	fileKV, err := NewFileKV(afero.NewMemMapFs(), "/repo/.gitlet")
	if err != nil {
		t.Fatalf("NewFileKV failed: %v", err)
	}
	osKV, err := NewFileKV(afero.NewOsFs(), filepath.Join(t.TempDir(), ".gitlet"))
	if err != nil {
		t.Fatalf("NewFileKV on disk failed: %v", err)
	}
	boltKV, err := OpenBolt(filepath.Join(t.TempDir(), "gitlet.db"))
	if err != nil {
		t.Fatalf("OpenBolt failed: %v", err)
	}
	t.Cleanup(func() { boltKV.Close() })

	return map[string]KV{
		"memory": NewMemoryKV(),
		"file":   fileKV,
		"os":     osKV,
		"bolt":   boltKV,
	}
}

func TestKVGetPutDelete(t *testing.T) {
	for name, kv := range engines(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get("HEAD")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get on empty store: expected ErrNotFound, got %v", err)
			}

			if err := kv.Put("HEAD", []byte("abc")); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			got, err := kv.Get("HEAD")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != "abc" {
				t.Errorf("Get = %q, want abc", got)
			}

			if err := kv.Put("HEAD", []byte("def")); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}
			got, _ = kv.Get("HEAD")
			if string(got) != "def" {
				t.Errorf("Get after overwrite = %q, want def", got)
			}

			ok, err := Has(kv, "HEAD")
			if err != nil || !ok {
				t.Errorf("Has = %v, %v", ok, err)
			}

			if err := kv.Delete("HEAD"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := kv.Delete("HEAD"); err != nil {
				t.Errorf("Delete of missing key should succeed, got %v", err)
			}
			ok, err = Has(kv, "HEAD")
			if err != nil || ok {
				t.Errorf("Has after delete = %v, %v", ok, err)
			}
		})
	}
}

func TestKVList(t *testing.T) {
	for name, kv := range engines(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{
				"refs/heads/master",
				"refs/heads/feat",
				"refs/heads/zeta",
				"commits/ab12",
				"commits/ab34",
				"commits/cd56",
				"HEAD",
			} {
				if err := kv.Put(k, []byte("v")); err != nil {
					t.Fatalf("Put(%s) failed: %v", k, err)
				}
			}

			heads, err := kv.List("refs/heads/")
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			want := []string{"refs/heads/feat", "refs/heads/master", "refs/heads/zeta"}
			if !reflect.DeepEqual(heads, want) {
				t.Errorf("List(refs/heads/) = %v, want %v", heads, want)
			}

			ab, err := kv.List("commits/ab")
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if !reflect.DeepEqual(ab, []string{"commits/ab12", "commits/ab34"}) {
				t.Errorf("List(commits/ab) = %v", ab)
			}

			none, err := kv.List("tags/")
			if err != nil {
				t.Fatalf("List of empty prefix failed: %v", err)
			}
			if len(none) != 0 {
				t.Errorf("List(tags/) = %v, want empty", none)
			}
		})
	}
}

func TestFileKVLayout(t *testing.T) {
	fs := afero.NewMemMapFs()
	kv, err := NewFileKV(fs, "/repo/.gitlet")
	if err != nil {
		t.Fatal(err)
	}
	if err := kv.Put("refs/heads/master", []byte("1234")); err != nil {
		t.Fatal(err)
	}
	data, err := afero.ReadFile(fs, "/repo/.gitlet/refs/heads/master")
	if err != nil {
		t.Fatalf("expected ref file on disk: %v", err)
	}
	if string(data) != "1234" {
		t.Errorf("ref file = %q", data)
	}
}

func TestFileKVRejectsEscapingKeys(t *testing.T) {
	kv, err := NewFileKV(afero.NewMemMapFs(), "/repo/.gitlet")
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"", ".", "..", "../outside", "/abs"} {
		if err := kv.Put(k, []byte("x")); err == nil {
			t.Errorf("Put(%q) should fail", k)
		}
	}
}

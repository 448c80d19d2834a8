package store

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FileKV stores each key as a file below root. The key "refs/heads/master"
// lives at <root>/refs/heads/master.
type FileKV struct {
	fs   afero.Fs
	root string
}

// NewFileKV creates a FileKV rooted at root on fs.
func NewFileKV(fs afero.Fs, root string) (*FileKV, error) {
	if err := fs.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create kv root: %w", err)
	}
	return &FileKV{fs: fs, root: root}, nil
}

func (f *FileKV) keyPath(key string) (string, error) {
	clean := path.Clean(key)
	if key == "" || clean == "." || strings.HasPrefix(clean, "../") || clean == ".." || path.IsAbs(clean) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(f.root, filepath.FromSlash(clean)), nil
}

// Get implements KV.Get.
func (f *FileKV) Get(key string) ([]byte, error) {
	p, err := f.keyPath(key)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(f.fs, p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &KeyError{Key: key}
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Put implements KV.Put. The value is written to a temp file in the same
// directory and renamed into place.
func (f *FileKV) Put(key string, value []byte) error {
	p, err := f.keyPath(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := f.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("write %s: mkdir: %w", key, err)
	}

	tmp, err := afero.TempFile(f.fs, dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: tmpfile: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		f.fs.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		f.fs.Remove(tmpName)
		return fmt.Errorf("write %s: close: %w", key, err)
	}
	if err := f.fs.Rename(tmpName, p); err != nil {
		f.fs.Remove(tmpName)
		return fmt.Errorf("write %s: rename: %w", key, err)
	}
	return nil
}

// Delete implements KV.Delete.
func (f *FileKV) Delete(key string) error {
	p, err := f.keyPath(key)
	if err != nil {
		return err
	}
	if err := f.fs.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// List implements KV.List. Only the directory containing the prefix is
// walked, so listing "refs/heads/" never touches unrelated subtrees.
func (f *FileKV) List(prefix string) ([]string, error) {
	dir := path.Dir(prefix + "x")
	start := f.root
	if dir != "." {
		start = filepath.Join(f.root, filepath.FromSlash(dir))
	}

	var keys []string
	err := afero.Walk(f.fs, start, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Package workspace implements working directory access and materialization.
//
// This package provides:
// - Reading, writing and removing working files by repository-relative name
// - Scanning the working directory into a filename -> content hash map
// - Materializing a commit's file map into the working directory
// - Detecting untracked files that a checkout would overwrite
//
// Names are slash separated and relative to the working directory root. The
// control directory is never visible through this package.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/javanhut/gitlet/internal/cas"
)

// ControlDir is the name of the repository control directory at the root of
// the working directory.
const ControlDir = ".gitlet"

var ErrInvalidPath = errors.New("invalid file name")

// Workspace is the working directory of a repository.
type Workspace struct {
	FS   afero.Fs
	Root string
}

// New creates a Workspace rooted at root on fs.
func New(fs afero.Fs, root string) *Workspace {
	return &Workspace{FS: fs, Root: root}
}

// CleanName normalizes a user supplied file name to the slash separated form
// used in commits.
func CleanName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	clean := path.Clean(filepath.ToSlash(name))
	if path.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, name)
	}
	if clean == ControlDir || strings.HasPrefix(clean, ControlDir+"/") {
		return "", fmt.Errorf("%w: %s is inside the control directory", ErrInvalidPath, name)
	}
	return clean, nil
}

func (w *Workspace) fullPath(name string) (string, error) {
	clean, err := CleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(w.Root, filepath.FromSlash(clean)), nil
}

// ReadFile returns the content of a working file. A missing file yields an
// error matching fs.ErrNotExist.
func (w *Workspace) ReadFile(name string) ([]byte, error) {
	p, err := w.fullPath(name)
	if err != nil {
		return nil, err
	}
	info, err := w.FS.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return afero.ReadFile(w.FS, p)
}

// WriteFile creates or replaces a working file, creating parent directories.
func (w *Workspace) WriteFile(name string, data []byte) error {
	p, err := w.fullPath(name)
	if err != nil {
		return err
	}
	if err := w.FS.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := afero.WriteFile(w.FS, p, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}
	return nil
}

// Remove deletes a working file and any parent directories left empty.
func (w *Workspace) Remove(name string) error {
	p, err := w.fullPath(name)
	if err != nil {
		return err
	}
	if err := w.FS.Remove(p); err != nil {
		return err
	}
	w.removeEmptyDirectories(filepath.Dir(p))
	return nil
}

// removeEmptyDirectories removes empty directories up the tree.
func (w *Workspace) removeEmptyDirectories(dir string) {
	root := filepath.Clean(w.Root)
	for dir != root && strings.HasPrefix(dir, root) {
		entries, err := afero.ReadDir(w.FS, dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := w.FS.Remove(dir); err != nil {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// Exists reports whether name is a regular file in the working directory.
func (w *Workspace) Exists(name string) (bool, error) {
	p, err := w.fullPath(name)
	if err != nil {
		return false, err
	}
	info, err := w.FS.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// Files lists every working file, sorted, skipping the control directory.
func (w *Workspace) Files() ([]string, error) {
	var files []string
	err := afero.Walk(w.FS, w.Root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(w.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if rel == ControlDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || rel == ControlDir {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan workspace: %w", err)
	}
	slices.Sort(files)
	return files, nil
}

// Scan hashes every working file.
func (w *Workspace) Scan() (map[string]cas.Hash, error) {
	files, err := w.Files()
	if err != nil {
		return nil, err
	}
	hashes := make(map[string]cas.Hash, len(files))
	for _, name := range files {
		data, err := w.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", name, err)
		}
		hashes[name] = cas.SumB3(data)
	}
	return hashes, nil
}

// Materializer writes commit snapshots into a workspace.
type Materializer struct {
	Objects   *cas.ObjectStore
	Workspace *Workspace
	Logger    *log.Logger
}

// NewMaterializer creates a Materializer. A nil logger discards output.
func NewMaterializer(objects *cas.ObjectStore, ws *Workspace, logger *log.Logger) *Materializer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Materializer{Objects: objects, Workspace: ws, Logger: logger}
}

// CheckoutFile writes the blob id into the working file name.
func (m *Materializer) CheckoutFile(name string, id cas.Hash) error {
	data, err := m.Objects.Get(id)
	if err != nil {
		return fmt.Errorf("failed to read file content for %s: %w", name, err)
	}
	if err := m.Workspace.WriteFile(name, data); err != nil {
		return err
	}
	m.Logger.Printf("wrote %s (%s)", name, id.Short(8))
	return nil
}

// Materialize replaces the snapshot from in the working directory with to:
// files tracked in from but absent in to are removed, every file of to is
// written. Untracked files are left alone.
func (m *Materializer) Materialize(from, to map[string]cas.Hash) error {
	for _, name := range sortedNames(from) {
		if _, keep := to[name]; keep {
			continue
		}
		err := m.Workspace.Remove(name)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove file %s: %w", name, err)
		}
		m.Logger.Printf("removed %s", name)
	}
	for _, name := range sortedNames(to) {
		if err := m.CheckoutFile(name, to[name]); err != nil {
			return err
		}
	}
	return nil
}

// UntrackedInTheWay returns the working files not tracked by the current
// snapshot that writing target would overwrite. A file also blocks when it
// sits where target needs a directory, or inside a directory target needs
// as a file.
func (w *Workspace) UntrackedInTheWay(current, target map[string]cas.Hash) ([]string, error) {
	files, err := w.Files()
	if err != nil {
		return nil, err
	}
	dirs := make(map[string]bool)
	for name := range target {
		for d := path.Dir(name); d != "."; d = path.Dir(d) {
			dirs[d] = true
		}
	}

	var blocked []string
	for _, name := range files {
		if _, ok := current[name]; ok {
			continue
		}
		if _, ok := target[name]; ok || dirs[name] || underTargetFile(name, target) {
			blocked = append(blocked, name)
		}
	}
	return blocked, nil
}

func underTargetFile(name string, target map[string]cas.Hash) bool {
	for d := path.Dir(name); d != "."; d = path.Dir(d) {
		if _, ok := target[d]; ok {
			return true
		}
	}
	return false
}

func sortedNames(files map[string]cas.Hash) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

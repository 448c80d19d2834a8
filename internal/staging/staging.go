// Package staging holds the changes prepared for the next commit.
//
// An Area keeps two disjoint sets: additions (filename -> blob id) and
// removals (filenames to drop from the snapshot). It is loaded from and saved
// to the repository key-value store as JSON.
package staging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"slices"

	"github.com/javanhut/gitlet/internal/cas"
	"github.com/javanhut/gitlet/internal/store"
)

const (
	additionsKey = "stage/additions"
	removalsKey  = "stage/removals"
)

var (
	ErrFileNotFound     = errors.New("file does not exist")
	ErrNothingToRemove  = errors.New("no reason to remove the file")
	errConflictingState = errors.New("file staged for both addition and removal")
)

// FileReader reads files from the working directory. A missing file must be
// reported with an error matching fs.ErrNotExist.
type FileReader interface {
	ReadFile(name string) ([]byte, error)
}

// FileRemover deletes files from the working directory.
type FileRemover interface {
	Remove(name string) error
}

// Area is the staging area.
type Area struct {
	Additions map[string]cas.Hash
	Removals  map[string]struct{}
}

// New returns an empty staging area.
func New() *Area {
	return &Area{
		Additions: make(map[string]cas.Hash),
		Removals:  make(map[string]struct{}),
	}
}

// Load reads the staging area from kv. Missing records mean an empty area.
func Load(kv store.KV) (*Area, error) {
	a := New()

	data, err := kv.Get(additionsKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load staged additions: %w", err)
	default:
		var raw map[string]string
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode staged additions: %w", err)
		}
		for name, hexID := range raw {
			h, err := cas.ParseHash(hexID)
			if err != nil {
				return nil, fmt.Errorf("decode staged addition %s: %w", name, err)
			}
			a.Additions[name] = h
		}
	}

	data, err = kv.Get(removalsKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load staged removals: %w", err)
	default:
		var names []string
		if err := json.Unmarshal(data, &names); err != nil {
			return nil, fmt.Errorf("decode staged removals: %w", err)
		}
		for _, name := range names {
			a.Removals[name] = struct{}{}
		}
	}

	for name := range a.Removals {
		if _, ok := a.Additions[name]; ok {
			return nil, fmt.Errorf("load staging area: %w: %s", errConflictingState, name)
		}
	}
	return a, nil
}

// Save writes the staging area to kv.
func (a *Area) Save(kv store.KV) error {
	raw := make(map[string]string, len(a.Additions))
	for name, h := range a.Additions {
		raw[name] = h.String()
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode staged additions: %w", err)
	}
	if err := kv.Put(additionsKey, data); err != nil {
		return fmt.Errorf("save staged additions: %w", err)
	}

	data, err = json.Marshal(a.RemovedFiles())
	if err != nil {
		return fmt.Errorf("encode staged removals: %w", err)
	}
	if err := kv.Put(removalsKey, data); err != nil {
		return fmt.Errorf("save staged removals: %w", err)
	}
	return nil
}

// Add stages filename from the working directory.
//
// A pending removal of filename is undone without writing a blob. A file
// whose content matches the blob tracked in the current commit is not staged,
// and any earlier addition for it is dropped. Otherwise the content is stored
// as a blob and recorded as an addition.
func (a *Area) Add(filename string, wt FileReader, objects *cas.ObjectStore, tracked map[string]cas.Hash) error {
	data, err := wt.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, filename)
	}
	if err != nil {
		return fmt.Errorf("stage %s: %w", filename, err)
	}

	if _, ok := a.Removals[filename]; ok {
		delete(a.Removals, filename)
		return nil
	}

	id := cas.SumB3(data)
	if cur, ok := tracked[filename]; ok && cur == id {
		delete(a.Additions, filename)
		return nil
	}

	if _, err := objects.Put(data); err != nil {
		return fmt.Errorf("stage %s: %w", filename, err)
	}
	a.Additions[filename] = id
	return nil
}

// Remove unstages or stages the removal of filename.
//
// A staged addition is simply dropped. A file tracked by the current commit is
// staged for removal and deleted from the working directory if present.
// Anything else fails with ErrNothingToRemove.
func (a *Area) Remove(filename string, wt FileRemover, tracked map[string]cas.Hash) error {
	if _, ok := a.Additions[filename]; ok {
		delete(a.Additions, filename)
		return nil
	}
	if _, ok := tracked[filename]; !ok {
		return fmt.Errorf("%w: %s", ErrNothingToRemove, filename)
	}
	a.Removals[filename] = struct{}{}
	if err := wt.Remove(filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", filename, err)
	}
	return nil
}

// Snapshot returns parent overlaid with the additions, minus the removals.
// parent is not modified.
func (a *Area) Snapshot(parent map[string]cas.Hash) map[string]cas.Hash {
	files := maps.Clone(parent)
	if files == nil {
		files = make(map[string]cas.Hash, len(a.Additions))
	}
	maps.Copy(files, a.Additions)
	for name := range a.Removals {
		delete(files, name)
	}
	return files
}

// IsEmpty reports whether nothing is staged.
func (a *Area) IsEmpty() bool {
	return len(a.Additions) == 0 && len(a.Removals) == 0
}

// Clear empties both sets.
func (a *Area) Clear() {
	clear(a.Additions)
	clear(a.Removals)
}

// StageAddition records filename -> id directly, cancelling any pending
// removal. Used by merge to stage resolved files.
func (a *Area) StageAddition(filename string, id cas.Hash) {
	delete(a.Removals, filename)
	a.Additions[filename] = id
}

// StageRemoval records the removal of filename, cancelling any pending
// addition.
func (a *Area) StageRemoval(filename string) {
	delete(a.Additions, filename)
	a.Removals[filename] = struct{}{}
}

// AddedFiles returns the staged additions in lexicographic order.
func (a *Area) AddedFiles() []string {
	return slices.Sorted(maps.Keys(a.Additions))
}

// RemovedFiles returns the staged removals in lexicographic order.
func (a *Area) RemovedFiles() []string {
	return slices.Sorted(maps.Keys(a.Removals))
}

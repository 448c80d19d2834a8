// Package merge implements three-way merging of commit snapshots.
//
// Resolution works on file maps (filename -> blob id) and never touches
// storage: it reports, per file, what must change relative to the current
// side. Conflict content is synthesized separately from the blob bytes.
package merge

import (
	"bytes"
	"maps"
	"slices"

	"github.com/javanhut/gitlet/internal/cas"
)

// Action is what a merge does to one file of the current side.
type Action uint8

const (
	Take     Action = iota + 1 // Replace or create the file with the given side's blob
	Delete                     // Remove the file; deleted on the given side only
	Conflict                   // Both sides changed the file differently
)

func (a Action) String() string {
	switch a {
	case Take:
		return "take"
	case Delete:
		return "delete"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Change is a resolved difference from the current side. Nil ids mean the
// file is absent on that side.
type Change struct {
	Action  Action
	Path    string
	Base    *cas.Hash
	Current *cas.Hash
	Given   *cas.Hash
}

// Result lists the changes a merge applies to the current side, sorted by
// path. Files the merge leaves alone do not appear.
type Result struct {
	Changes []Change
}

// Conflicted returns the paths that need conflict markers, in path order.
func (r *Result) Conflicted() []string {
	var paths []string
	for _, c := range r.Changes {
		if c.Action == Conflict {
			paths = append(paths, c.Path)
		}
	}
	return paths
}

// HasConflicts reports whether any file conflicted.
func (r *Result) HasConflicts() bool {
	for _, c := range r.Changes {
		if c.Action == Conflict {
			return true
		}
	}
	return false
}

// Resolve performs a three-way merge of current and given against base.
// Every file present in current or given is considered; files only in base
// were deleted on both sides and stay deleted.
func Resolve(base, current, given map[string]cas.Hash) *Result {
	paths := make(map[string]struct{}, len(current)+len(given))
	for p := range current {
		paths[p] = struct{}{}
	}
	for p := range given {
		paths[p] = struct{}{}
	}

	res := &Result{}
	for _, p := range slices.Sorted(maps.Keys(paths)) {
		b, c, g := lookup(base, p), lookup(current, p), lookup(given, p)
		if action, ok := mergeFile(b, c, g); ok {
			res.Changes = append(res.Changes, Change{
				Action:  action,
				Path:    p,
				Base:    b,
				Current: c,
				Given:   g,
			})
		}
	}
	return res
}

// mergeFile decides the fate of one file. ok is false when the current side
// already holds the merged result.
func mergeFile(base, current, given *cas.Hash) (Action, bool) {
	switch {
	case same(current, given):
		// Both sides agree, including both deleted.
		return 0, false

	case same(base, current):
		// Only the given side changed it.
		if given == nil {
			return Delete, true
		}
		return Take, true

	case same(base, given):
		// Only the current side changed it.
		return 0, false

	default:
		return Conflict, true
	}
}

func lookup(files map[string]cas.Hash, path string) *cas.Hash {
	h, ok := files[path]
	if !ok {
		return nil
	}
	return &h
}

func same(a, b *cas.Hash) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ConflictContent builds the replacement content of a conflicted file. A
// side that deleted the file contributes nothing between its markers.
func ConflictContent(current, given []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("<<<<<<< HEAD\n")
	buf.Write(current)
	buf.WriteString("=======\n")
	buf.Write(given)
	buf.WriteString(">>>>>>>\n")
	return buf.Bytes()
}

package commit

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"strings"
	"time"

	"github.com/javanhut/gitlet/internal/cas"
	"github.com/javanhut/gitlet/internal/store"
)

// indexPrefix is the key prefix of the commit index: one key per commit id.
const indexPrefix = "commits/"

// Graph creates, stores and traverses commits.
type Graph struct {
	objects *cas.ObjectStore
	index   store.KV
}

// NewGraph creates a Graph persisting commits in objects and listing them in
// index.
func NewGraph(objects *cas.ObjectStore, index store.KV) *Graph {
	return &Graph{objects: objects, index: index}
}

// Create builds a commit, stores it and records it in the commit index.
// Every parent must already exist, which keeps the graph acyclic.
func (g *Graph) Create(message string, parents []cas.Hash, files map[string]cas.Hash, when time.Time) (*Commit, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	for _, p := range parents {
		ok, err := g.objects.Exists(p)
		if err != nil {
			return nil, fmt.Errorf("create commit: check parent %s: %w", p.Short(12), err)
		}
		if !ok {
			return nil, fmt.Errorf("create commit: parent %s: %w", p.Short(12), ErrCommitNotFound)
		}
	}

	c := &Commit{
		Message:   message,
		Timestamp: FormatTime(when),
		Parents:   append([]cas.Hash(nil), parents...),
		Files:     maps.Clone(files),
	}
	if c.Files == nil {
		c.Files = make(map[string]cas.Hash)
	}

	id, err := g.objects.Put(c.Encode())
	if err != nil {
		return nil, fmt.Errorf("create commit: %w", err)
	}
	c.ID = id

	if err := g.index.Put(indexPrefix+id.String(), []byte(c.Timestamp)); err != nil {
		return nil, fmt.Errorf("create commit: index: %w", err)
	}
	return c, nil
}

// Get reads the commit with the given id.
func (g *Graph) Get(id cas.Hash) (*Commit, error) {
	data, err := g.objects.Get(id)
	if errors.Is(err, cas.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCommitNotFound, id.Short(12))
	}
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", id.Short(12), err)
	}
	c, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a commit: %v", ErrCommitNotFound, id.Short(12), err)
	}
	return c, nil
}

// All returns the ids of every commit ever created, in id order.
func (g *Graph) All() ([]cas.Hash, error) {
	return g.list("")
}

// Resolve expands a full id or an unambiguous id prefix into a commit id.
func (g *Graph) Resolve(prefix string) (cas.Hash, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return cas.Hash{}, fmt.Errorf("%w: empty id", ErrCommitNotFound)
	}
	ids, err := g.list(prefix)
	if err != nil {
		return cas.Hash{}, err
	}
	switch len(ids) {
	case 0:
		return cas.Hash{}, fmt.Errorf("%w: %s", ErrCommitNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return cas.Hash{}, fmt.Errorf("%w: %s matches %d commits", ErrAmbiguousCommitID, prefix, len(ids))
	}
}

func (g *Graph) list(prefix string) ([]cas.Hash, error) {
	keys, err := g.index.List(indexPrefix + prefix)
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	ids := make([]cas.Hash, 0, len(keys))
	for _, k := range keys {
		h, err := cas.ParseHash(strings.TrimPrefix(k, indexPrefix))
		if err != nil {
			return nil, fmt.Errorf("list commits: bad index key %q: %w", k, err)
		}
		ids = append(ids, h)
	}
	return ids, nil
}

// Ancestors yields start and every commit reachable from it through any
// parent, breadth first, each exactly once. The sequence is lazy and can be
// ranged over any number of times.
func (g *Graph) Ancestors(start cas.Hash) iter.Seq2[*Commit, error] {
	return func(yield func(*Commit, error) bool) {
		seen := map[cas.Hash]struct{}{start: {}}
		queue := []cas.Hash{start}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]

			c, err := g.Get(id)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(c, nil) {
				return
			}
			for _, p := range c.Parents {
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				queue = append(queue, p)
			}
		}
	}
}

// FirstParentHistory yields start followed by its first-parent chain down to
// the root commit.
func (g *Graph) FirstParentHistory(start cas.Hash) iter.Seq2[*Commit, error] {
	return func(yield func(*Commit, error) bool) {
		id := start
		for {
			c, err := g.Get(id)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(c, nil) {
				return
			}
			if len(c.Parents) == 0 {
				return
			}
			id = c.Parents[0]
		}
	}
}

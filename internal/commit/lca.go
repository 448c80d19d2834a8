package commit

import (
	"fmt"

	"github.com/javanhut/gitlet/internal/cas"
)

// frontier is one side of the lock-step search.
type frontier struct {
	depth map[cas.Hash]int
	queue []cas.Hash
	level int
}

func newFrontier(start cas.Hash) *frontier {
	return &frontier{depth: map[cas.Hash]int{start: 0}, queue: []cas.Hash{start}}
}

func (f *frontier) live() bool { return len(f.queue) > 0 }

// LowestCommonAncestor returns the split point of a and b: the commit
// reachable from both whose combined distance from a and b is smallest.
//
// Both sides are expanded one BFS level at a time over every parent, a side
// first. A node becomes a candidate once both sides have reached it; a later
// candidate replaces the current one only with a strictly smaller combined
// depth, so ties go to the earliest discovery. The search stops once no
// undiscovered candidate could beat the best one.
func (g *Graph) LowestCommonAncestor(a, b cas.Hash) (cas.Hash, error) {
	if a == b {
		if _, err := g.Get(a); err != nil {
			return cas.Hash{}, err
		}
		return a, nil
	}

	fa, fb := newFrontier(a), newFrontier(b)
	var (
		best      cas.Hash
		bestScore = -1
	)
	consider := func(id cas.Hash) {
		da, okA := fa.depth[id]
		db, okB := fb.depth[id]
		if !okA || !okB {
			return
		}
		if score := da + db; bestScore < 0 || score < bestScore {
			best, bestScore = id, score
		}
	}
	// A node still missing from one side is at least one level past that
	// side's current frontier.
	bound := func() int {
		lower := -1
		for _, f := range []*frontier{fa, fb} {
			if !f.live() {
				continue
			}
			if lower < 0 || f.level+1 < lower {
				lower = f.level + 1
			}
		}
		return lower
	}
	done := func() bool {
		lower := bound()
		if lower < 0 {
			return true
		}
		return bestScore >= 0 && bestScore <= lower
	}

	for !done() {
		for _, f := range []*frontier{fa, fb} {
			if !f.live() {
				continue
			}
			found, err := g.expand(f)
			if err != nil {
				return cas.Hash{}, err
			}
			for _, id := range found {
				consider(id)
			}
			if done() {
				break
			}
		}
	}

	if bestScore < 0 {
		return cas.Hash{}, fmt.Errorf("%w: %s and %s", ErrNoCommonAncestor, a.Short(12), b.Short(12))
	}
	return best, nil
}

// expand advances f by one BFS level and returns the newly reached ids in
// discovery order.
func (g *Graph) expand(f *frontier) ([]cas.Hash, error) {
	var next []cas.Hash
	for _, id := range f.queue {
		c, err := g.Get(id)
		if err != nil {
			return nil, fmt.Errorf("ancestor search: %w", err)
		}
		for _, p := range c.Parents {
			if _, seen := f.depth[p]; seen {
				continue
			}
			f.depth[p] = f.level + 1
			next = append(next, p)
		}
	}
	f.queue = next
	f.level++
	return next, nil
}

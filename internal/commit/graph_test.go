package commit

import (
	"errors"
	"testing"
	"time"

	"github.com/javanhut/gitlet/internal/cas"
	"github.com/javanhut/gitlet/internal/store"
)

type testGraph struct {
	*Graph
	t     *testing.T
	clock int64
}

func newTestGraph(t *testing.T) *testGraph {
	t.Helper()
	g := NewGraph(cas.NewObjectStore(cas.NewMemoryCAS()), store.NewMemoryKV())
	return &testGraph{Graph: g, t: t}
}

// commit creates a commit with a distinct timestamp and returns its id.
func (tg *testGraph) commit(message string, parents ...cas.Hash) cas.Hash {
	tg.t.Helper()
	tg.clock++
	c, err := tg.Create(message, parents, map[string]cas.Hash{
		message + ".txt": cas.SumB3([]byte(message)),
	}, time.Unix(tg.clock, 0).UTC())
	if err != nil {
		tg.t.Fatalf("Create(%s) failed: %v", message, err)
	}
	return c.ID
}

func (tg *testGraph) lca(a, b cas.Hash) cas.Hash {
	tg.t.Helper()
	id, err := tg.LowestCommonAncestor(a, b)
	if err != nil {
		tg.t.Fatalf("LowestCommonAncestor failed: %v", err)
	}
	return id
}

func TestCreateAndGet(t *testing.T) {
	g := newTestGraph(t)

	root, err := g.Create("initial commit", nil, nil, time.Unix(0, 0).UTC())
	if err != nil {
		t.Fatalf("Create root failed: %v", err)
	}
	if root.Timestamp != "Thu Jan 1 00:00:00 1970 +0000" {
		t.Errorf("root timestamp = %q", root.Timestamp)
	}

	files := map[string]cas.Hash{"a.txt": cas.SumB3([]byte("A"))}
	child, err := g.Create("c1", []cas.Hash{root.ID}, files, time.Unix(10, 0).UTC())
	if err != nil {
		t.Fatalf("Create child failed: %v", err)
	}
	files["b.txt"] = cas.SumB3([]byte("B"))
	if len(child.Files) != 1 {
		t.Error("commit must not alias the caller's file map")
	}

	got, err := g.Get(child.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Message != "c1" || len(got.Parents) != 1 || got.Parents[0] != root.ID {
		t.Errorf("Get returned %+v", got)
	}
	if got.ID != child.ID {
		t.Errorf("Get id = %s, want %s", got.ID, child.ID)
	}
}

func TestCreateValidation(t *testing.T) {
	g := newTestGraph(t)

	if _, err := g.Create("   ", nil, nil, time.Now()); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank message: expected ErrEmptyMessage, got %v", err)
	}
	ghost := cas.SumB3([]byte("ghost"))
	if _, err := g.Create("orphan", []cas.Hash{ghost}, nil, time.Now()); !errors.Is(err, ErrCommitNotFound) {
		t.Errorf("missing parent: expected ErrCommitNotFound, got %v", err)
	}
	if _, err := g.Get(ghost); !errors.Is(err, ErrCommitNotFound) {
		t.Errorf("Get missing: expected ErrCommitNotFound, got %v", err)
	}
}

func TestGetRejectsBlob(t *testing.T) {
	objects := cas.NewObjectStore(cas.NewMemoryCAS())
	g := NewGraph(objects, store.NewMemoryKV())
	blob, err := objects.Put([]byte("just a file"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Get(blob); !errors.Is(err, ErrCommitNotFound) {
		t.Errorf("expected ErrCommitNotFound for a blob id, got %v", err)
	}
}

func TestAllAndResolve(t *testing.T) {
	g := newTestGraph(t)
	root := g.commit("root")
	c1 := g.commit("c1", root)

	all, err := g.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("All = %d commits, want 2", len(all))
	}
	if all[0].String() > all[1].String() {
		t.Error("All should be in id order")
	}

	for _, input := range []string{c1.String(), c1.Short(8), c1.String()[:6]} {
		got, err := g.Resolve(input)
		if err != nil {
			t.Errorf("Resolve(%s) failed: %v", input, err)
			continue
		}
		if got != c1 {
			t.Errorf("Resolve(%s) = %s", input, got)
		}
	}

	if _, err := g.Resolve("zzzz"); !errors.Is(err, ErrCommitNotFound) {
		t.Errorf("expected ErrCommitNotFound, got %v", err)
	}
	if _, err := g.Resolve(""); !errors.Is(err, ErrCommitNotFound) {
		t.Errorf("empty id: expected ErrCommitNotFound, got %v", err)
	}
}

func TestResolveAmbiguous(t *testing.T) {
	g := newTestGraph(t)
	root := g.commit("root")

	// Create commits until two share a first hex digit.
	byDigit := map[byte]cas.Hash{root.String()[0]: root}
	var digit byte
	for i := 0; ; i++ {
		id := g.commit(string(rune('a'+i%26))+string(rune('0'+i/26)), root)
		if _, ok := byDigit[id.String()[0]]; ok {
			digit = id.String()[0]
			break
		}
		byDigit[id.String()[0]] = id
	}
	if _, err := g.Resolve(string(digit)); !errors.Is(err, ErrAmbiguousCommitID) {
		t.Errorf("expected ErrAmbiguousCommitID, got %v", err)
	}
}

func TestAncestors(t *testing.T) {
	g := newTestGraph(t)
	root := g.commit("root")
	left := g.commit("left", root)
	right := g.commit("right", root)
	merged := g.commit("merged", left, right)

	seen := make(map[cas.Hash]int)
	var order []cas.Hash
	for c, err := range g.Ancestors(merged) {
		if err != nil {
			t.Fatalf("Ancestors failed: %v", err)
		}
		seen[c.ID]++
		order = append(order, c.ID)
	}
	if len(order) != 4 {
		t.Fatalf("visited %d commits, want 4", len(order))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("%s visited %d times", id.Short(8), n)
		}
	}
	if order[0] != merged || order[3] != root {
		t.Errorf("BFS order wrong: start=%s last=%s", order[0].Short(8), order[3].Short(8))
	}

	// The sequence is restartable and stops early on break.
	count := 0
	for _, err := range g.Ancestors(merged) {
		if err != nil {
			t.Fatal(err)
		}
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("early break visited %d", count)
	}

	for _, err := range g.Ancestors(cas.SumB3([]byte("ghost"))) {
		if !errors.Is(err, ErrCommitNotFound) {
			t.Errorf("expected ErrCommitNotFound, got %v", err)
		}
	}
}

func TestFirstParentHistory(t *testing.T) {
	g := newTestGraph(t)
	root := g.commit("root")
	left := g.commit("left", root)
	right := g.commit("right", root)
	merged := g.commit("merged", left, right)

	var got []cas.Hash
	for c, err := range g.FirstParentHistory(merged) {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, c.ID)
	}
	want := []cas.Hash{merged, left, root}
	if len(got) != len(want) {
		t.Fatalf("history length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("history[%d] = %s, want %s", i, got[i].Short(8), want[i].Short(8))
		}
	}
}

func TestLCALinear(t *testing.T) {
	g := newTestGraph(t)
	c1 := g.commit("c1")
	c2 := g.commit("c2", c1)
	c3 := g.commit("c3", c2)

	if got := g.lca(c3, c1); got != c1 {
		t.Errorf("lca(c3, c1) = %s, want c1", got.Short(8))
	}
	if got := g.lca(c1, c3); got != c1 {
		t.Errorf("lca(c1, c3) = %s, want c1", got.Short(8))
	}
	if got := g.lca(c2, c2); got != c2 {
		t.Errorf("lca(c2, c2) = %s, want c2", got.Short(8))
	}
}

func TestLCABranches(t *testing.T) {
	g := newTestGraph(t)
	root := g.commit("root")
	a1 := g.commit("a1", root)
	a2 := g.commit("a2", a1)
	b1 := g.commit("b1", root)

	if got := g.lca(a2, b1); got != root {
		t.Errorf("lca(a2, b1) = %s, want root", got.Short(8))
	}
	if got := g.lca(b1, a2); got != root {
		t.Errorf("lca(b1, a2) = %s, want root", got.Short(8))
	}
}

// After master merges feat, further work on feat must split at feat's merged
// tip rather than at the root a first-parent walk would find.
func TestLCAAfterMerge(t *testing.T) {
	g := newTestGraph(t)
	root := g.commit("root")
	a1 := g.commit("a1", root)
	a2 := g.commit("a2", a1)
	b1 := g.commit("b1", root)
	m := g.commit("merge", a2, b1)
	b2 := g.commit("b2", b1)

	if got := g.lca(m, b2); got != b1 {
		t.Errorf("lca(merge, b2) = %s, want b1", got.Short(8))
	}
	if got := g.lca(b2, m); got != b1 {
		t.Errorf("lca(b2, merge) = %s, want b1", got.Short(8))
	}
	if got := g.lca(m, b1); got != b1 {
		t.Errorf("lca(merge, b1) = %s, want b1", got.Short(8))
	}
}

func TestLCACrissCross(t *testing.T) {
	g := newTestGraph(t)
	root := g.commit("root")
	x1 := g.commit("x1", root)
	y1 := g.commit("y1", root)
	x2 := g.commit("x2", x1, y1)
	y2 := g.commit("y2", y1, x1)

	// x1 and y1 tie at combined depth 2; the second side reaches y1 first.
	got := g.lca(x2, y2)
	if got != y1 {
		t.Errorf("lca(x2, y2) = %s, want y1", got.Short(8))
	}
	if again := g.lca(x2, y2); again != got {
		t.Error("lca should be deterministic")
	}
}

func TestLCADisjoint(t *testing.T) {
	g := newTestGraph(t)
	a := g.commit("island a")
	b := g.commit("island b")
	if _, err := g.LowestCommonAncestor(a, b); !errors.Is(err, ErrNoCommonAncestor) {
		t.Errorf("expected ErrNoCommonAncestor, got %v", err)
	}
}

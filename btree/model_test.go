package btree

import (
	"math/rand"
	"testing"

	gbtree "github.com/google/btree"
)

// model is a reference ordered set for randomized tests.
type model struct {
	*gbtree.BTreeG[int]
}

func newModel() model {
	return model{gbtree.NewG[int](4, func(a, b int) bool { return a < b })}
}

func (m model) keys() []int {
	out := make([]int, 0, m.Len())
	m.Ascend(func(k int) bool {
		out = append(out, k)
		return true
	})
	return out
}

func (m model) clone() model {
	return model{m.Clone()}
}

func assertMatchesModel(t *testing.T, tree *Tree, m model, step int) {
	t.Helper()
	mustCheck(t, tree)
	got, want := keys(tree), m.keys()
	if len(got) != len(want) || tree.Count() != m.Len() {
		t.Fatalf("step %d: tree holds %d items (count %d), model %d", step, len(got), tree.Count(), m.Len())
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("step %d: item %d is %d, model has %d", step, i, got[i], want[i])
		}
	}
}

type snapshot struct {
	tree  *Tree
	model model
}

// applyOp executes one randomized operation on tree and model and compares
// their results.
func applyOp(t *testing.T, tree *Tree, m model, op, k int) {
	t.Helper()
	switch op {
	case 0, 1, 2:
		_, replaced, err := tree.Set(keyItem(k))
		if err != nil {
			t.Fatalf("set %d: %v", k, err)
		}
		if _, had := m.ReplaceOrInsert(k); had != replaced {
			t.Fatalf("set %d: replaced=%v, model says %v", k, replaced, had)
		}
	case 3, 4:
		removed, found, err := tree.Delete(keyItem(k))
		if err != nil {
			t.Fatalf("delete %d: %v", k, err)
		}
		if _, had := m.Delete(k); had != found || (found && keyOf(removed) != k) {
			t.Fatalf("delete %d: found=%v, model says %v", k, found, had)
		}
	case 5:
		item, found, err := tree.PopMin()
		want, had := m.DeleteMin()
		if err != nil || found != had || (found && keyOf(item) != want) {
			t.Fatalf("pop min: got %v/%v/%v, model %d/%v", item, found, err, want, had)
		}
	case 6:
		item, found, err := tree.PopMax()
		want, had := m.DeleteMax()
		if err != nil || found != had || (found && keyOf(item) != want) {
			t.Fatalf("pop max: got %v/%v/%v, model %d/%v", item, found, err, want, had)
		}
	default:
		item, found := tree.Get(keyItem(k))
		_, had := m.Get(k)
		if found != had || (found && keyOf(item) != k) {
			t.Fatalf("get %d: found=%v, model says %v", k, found, had)
		}
	}
}

func TestRandomOperationsAgainstModel(t *testing.T) {
	for _, maxItems := range []int{3, 4, 5, 9} {
		rnd := rand.New(rand.NewSource(int64(maxItems)))
		tree := makeTree(t, maxItems)
		m := newModel()
		var snapshots []snapshot
		for step := 0; step < 4000; step++ {
			applyOp(t, tree, m, rnd.Intn(8), rnd.Intn(300))
			if step%250 == 0 {
				snapshots = append(snapshots, snapshot{tree.Copy(), m.clone()})
			}
			if step%500 == 0 {
				assertMatchesModel(t, tree, m, step)
			}
		}
		assertMatchesModel(t, tree, m, -1)
		// snapshots are unaffected by everything that happened after Copy
		for i, s := range snapshots {
			assertMatchesModel(t, s.tree, s.model, i)
			// and stay usable on their own
			for j := 0; j < 200; j++ {
				applyOp(t, s.tree, s.model, rnd.Intn(8), rnd.Intn(300))
			}
			assertMatchesModel(t, s.tree, s.model, i)
		}
		assertMatchesModel(t, tree, m, -2)
	}
}

func FuzzTreeOperations(f *testing.F) {
	f.Add([]byte{0, 10, 0, 20, 0, 5, 0, 6, 0, 12, 3, 10, 5, 0, 6, 0})
	f.Add([]byte{1, 1, 1, 2, 1, 3, 7, 0, 3, 2, 3, 1, 3, 3})
	f.Fuzz(func(t *testing.T, data []byte) {
		tree := makeTree(t, 3)
		m := newModel()
		var snap *snapshot
		for i := 0; i+1 < len(data); i += 2 {
			op, k := int(data[i]), int(data[i+1])
			if op%16 == 15 && snap == nil {
				snap = &snapshot{tree.Copy(), m.clone()}
				continue
			}
			applyOp(t, tree, m, op%8, k)
		}
		assertMatchesModel(t, tree, m, len(data))
		if snap != nil {
			assertMatchesModel(t, snap.tree, snap.model, 0)
		}
	})
}

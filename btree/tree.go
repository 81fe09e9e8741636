package btree

import (
	"fmt"
)

// Tree is an ordered container of fixed-size byte items.
//
// The zero value is not usable; create trees with New. Trees created by Copy
// share nodes with their origin until one of them is modified.
//
// Write operations are not safe for concurrent mutation by multiple
// goroutines on the same handle.
type Tree struct {
	cfg    Config
	root   *node
	count  int
	height int  // 0 means empty tree
	nomem  bool // sticky out-of-memory flag
}

// New creates an empty tree with validated configuration.
func New(cfg Config) (*Tree, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Tree{cfg: cfg.normalized()}, nil
}

// Config returns a copy of the effective tree configuration.
func (t *Tree) Config() Config {
	return t.cfg
}

// Copy returns a new tree handle with the same content, in constant time.
//
// No node is duplicated eagerly. Incrementing the share count of the root is
// sufficient: every mutation acquires exclusive ownership of the nodes along
// its path, cloning shared ones, and a clone increments the share counts of
// its children. Therefore neither handle can ever observe a modification made
// through the other.
func (t *Tree) Copy() *Tree {
	if t == nil {
		return nil
	}
	c := &Tree{
		cfg:    t.cfg,
		root:   t.root,
		count:  t.count,
		height: t.height,
	}
	if c.root != nil {
		c.root.incRef()
	}
	return c
}

// Clear removes all items. The configuration is retained and the tree stays
// usable. Nodes shared with other handles stay intact for those handles.
func (t *Tree) Clear() {
	if t.root != nil {
		t.release(t.root)
	}
	t.root = nil
	t.count = 0
	t.height = 0
	t.nomem = false
}

// Release drops the tree's reference to its nodes, handing the storage of
// every node not shared with another handle back to the allocator. The tree
// must not be used afterwards.
func (t *Tree) Release() {
	if t == nil {
		return
	}
	t.Clear()
}

// NoMemory reports whether the most recent mutating operation failed because
// the allocator could not provide memory.
func (t *Tree) NoMemory() bool {
	return t != nil && t.nomem
}

// IsEmpty reports whether the tree has no items.
func (t *Tree) IsEmpty() bool {
	return t == nil || t.root == nil
}

// Count returns the number of items in the tree.
func (t *Tree) Count() int {
	if t == nil {
		return 0
	}
	return t.count
}

// Height returns the number of levels from root to leaf, where 0 means empty
// and 1 means a leaf root.
func (t *Tree) Height() int {
	if t == nil {
		return 0
	}
	return t.height
}

// --- Mutation --------------------------------------------------------------
//
// Every mutation runs in three phases:
//
//  1. a read-only descent plans the work and records the child slot taken at
//     every level,
//  2. every allocation is made: clones of shared nodes on the path, new
//     siblings for splits, a new root, a mutable donor for borrowing,
//  3. the structure is changed, without further allocation.
//
// A failure in phase 2 leaves all nodes cloned so far linked into the tree.
// They are equal in content to the shared originals they replace, so the tree
// remains exactly as it was from the client's point of view.

// Set inserts item or replaces an equal item.
//
// If an equal item was present, Set returns a copy of it and replaced is true.
// Otherwise the item is inserted and Count grows by one. On allocation failure
// Set returns ErrNoMemory and the tree is unchanged.
func (t *Tree) Set(item []byte) (prev []byte, replaced bool, err error) {
	t.checkItem(item)
	t.nomem = false
	if t.root == nil {
		return nil, false, t.insertIntoEmpty(item, "set")
	}
	slots, found := t.searchPath(item)
	if found {
		return t.replaceAt(slots, item)
	}
	return nil, false, t.insertAt(slots, item, "set")
}

// Load appends item at the end of the tree, for bulk loading from a sorted
// source.
//
// Every item presented to Load must be strictly greater than all items in
// the tree. Load does not compare items; it appends onto the rightmost leaf
// and only rebalances along the right spine. With non-ascending input the
// order of the tree is unspecified.
//
// Results are as for Set: Load always inserts, so prev is nil and replaced is
// false unless err is non-nil.
func (t *Tree) Load(item []byte) (prev []byte, replaced bool, err error) {
	t.checkItem(item)
	t.nomem = false
	if t.root == nil {
		return nil, false, t.insertIntoEmpty(item, "load")
	}
	return nil, false, t.insertAt(t.spinePath(true), item, "load")
}

// Delete removes the item equal to key and returns a copy of it.
// found is false if no such item exists.
func (t *Tree) Delete(key []byte) (removed []byte, found bool, err error) {
	t.nomem = false
	if t.root == nil {
		return nil, false, nil
	}
	slots, found := t.searchPath(key)
	if !found {
		return nil, false, nil
	}
	swap := -1
	if len(slots) < t.height {
		// Found in an internal node: extend the path to the in-order
		// predecessor, the rightmost item of the left subtree.
		swap = len(slots) - 1
		nd := t.pathNodes(slots)[swap].children[slots[swap]]
		for !nd.leaf {
			slots = append(slots, nd.n)
			nd = nd.children[nd.n]
		}
		slots = append(slots, nd.n-1)
	}
	removed, err = t.removeAt(slots, swap, "delete")
	if err != nil {
		return nil, false, err
	}
	return removed, true, nil
}

// PopMin removes the smallest item and returns a copy of it.
// found is false if the tree is empty.
func (t *Tree) PopMin() (item []byte, found bool, err error) {
	return t.pop(false, "pop min")
}

// PopMax removes the largest item and returns a copy of it.
// found is false if the tree is empty.
func (t *Tree) PopMax() (item []byte, found bool, err error) {
	return t.pop(true, "pop max")
}

func (t *Tree) pop(right bool, op string) ([]byte, bool, error) {
	t.nomem = false
	if t.root == nil {
		return nil, false, nil
	}
	slots := t.spinePath(right)
	if right {
		slots[len(slots)-1]--
	}
	item, err := t.removeAt(slots, -1, op)
	if err != nil {
		return nil, false, err
	}
	return item, true, nil
}

// --- Planning --------------------------------------------------------------

// searchPath descends towards key and records the slot taken at every level.
// If key is found, the last slot is its item index and found is true;
// otherwise the path ends in a leaf at the insert position of key.
func (t *Tree) searchPath(key []byte) (slots []int, found bool) {
	slots = make([]int, 0, t.height)
	nd := t.root
	for {
		i, ok := t.find(nd, key)
		slots = append(slots, i)
		if ok {
			return slots, true
		}
		if nd.leaf {
			return slots, false
		}
		nd = nd.children[i]
	}
}

// spinePath returns the path along the leftmost or rightmost spine. The leaf
// slot is the position before the first item or after the last one.
func (t *Tree) spinePath(right bool) []int {
	slots := make([]int, 0, t.height)
	nd := t.root
	for {
		i := 0
		if right {
			i = nd.n
		}
		slots = append(slots, i)
		if nd.leaf {
			return slots
		}
		nd = nd.children[i]
	}
}

// pathNodes returns the (possibly shared) nodes along a path without
// modifying anything.
func (t *Tree) pathNodes(slots []int) []*node {
	nodes := make([]*node, len(slots))
	nd := t.root
	for d := range slots {
		nodes[d] = nd
		if d+1 < len(slots) {
			nd = nd.children[slots[d]]
		}
	}
	return nodes
}

// --- Execution -------------------------------------------------------------

func (t *Tree) insertIntoEmpty(item []byte, op string) error {
	root := t.makeNode(true)
	if root == nil {
		return t.outOfMemory(op)
	}
	t.insertItemAt(root, 0, item)
	t.root = root
	t.height = 1
	t.count = 1
	return nil
}

func (t *Tree) replaceAt(slots []int, item []byte) ([]byte, bool, error) {
	nodes, ok := t.mutPath(slots)
	if !ok {
		return nil, false, t.outOfMemory("set")
	}
	d := len(slots) - 1
	prev := append([]byte(nil), t.item(nodes[d], slots[d])...)
	t.setItem(nodes[d], slots[d], item)
	return prev, true, nil
}

// insertAt inserts item into the leaf at the end of a path, splitting nodes
// upwards as needed. A node splits when its item count would exceed MaxItems;
// if the root splits, the tree grows by one level.
func (t *Tree) insertAt(slots []int, item []byte, op string) error {
	depth := len(slots)
	assert(depth == t.height, "insertAt: path does not end in a leaf")
	// A split cascades through every full node from the leaf upwards.
	ro := t.pathNodes(slots)
	splits := 0
	for d := depth - 1; d >= 0 && t.full(ro[d]); d-- {
		splits++
	}
	spares := make([]*node, depth)
	var newRoot *node
	freeSpares := func() {
		for _, nd := range spares {
			if nd != nil {
				t.freeNode(nd)
			}
		}
		if newRoot != nil {
			t.freeNode(newRoot)
		}
	}
	for d := depth - 1; d >= depth-splits; d-- {
		if spares[d] = t.makeNode(d == depth-1); spares[d] == nil {
			freeSpares()
			return t.outOfMemory(op)
		}
	}
	if splits == depth {
		if newRoot = t.makeNode(false); newRoot == nil {
			freeSpares()
			return t.outOfMemory(op)
		}
	}
	nodes, ok := t.mutPath(slots)
	if !ok {
		freeSpares()
		return t.outOfMemory(op)
	}
	t.insertItemAt(nodes[depth-1], slots[depth-1], item)
	for d := depth - 1; d >= 0 && t.overflow(nodes[d]); d-- {
		nd, next := nodes[d], spares[d]
		assert(next != nil, "insertAt: split without prepared sibling")
		mid := t.split(nd, next)
		if d == 0 {
			t.insertItemAt(newRoot, 0, t.item(nd, mid))
			newRoot.children = append(newRoot.children, nd, next)
			t.root = newRoot
			t.height++
			tracer().Debugf("btree %s: root split, height now %d", op, t.height)
			break
		}
		parent, ps := nodes[d-1], slots[d-1]
		t.insertItemAt(parent, ps, t.item(nd, mid))
		insertChildAt(parent, ps+1, next)
	}
	t.count++
	return nil
}

// removeAt removes the item at the leaf end of a path and rebalances
// upwards. If swap is a valid depth, the item to delete lives in the
// internal node at that depth, and the leaf item at the end of the path (its
// in-order predecessor) takes its place.
func (t *Tree) removeAt(slots []int, swap int, op string) ([]byte, error) {
	depth := len(slots)
	assert(depth == t.height, "removeAt: path does not end in a leaf")
	// Plan the rebalancing cascade to find the sibling a borrow will take an
	// item from. Merges only read their sibling and never allocate.
	ro := t.pathNodes(slots)
	borrowDepth, borrowSlot := -1, -1
	remaining := ro[depth-1].n - 1
	for d := depth - 1; d > 0 && remaining < t.cfg.minItems(); d-- {
		kind, si := t.rebalancePolicy(ro[d-1], slots[d-1])
		if kind == borrowLeft || kind == borrowRight {
			borrowDepth, borrowSlot = d-1, si
			break
		}
		remaining = ro[d-1].n - 1
	}
	nodes, ok := t.mutPath(slots)
	if !ok {
		return nil, t.outOfMemory(op)
	}
	if borrowDepth >= 0 && !t.mut(&nodes[borrowDepth].children[borrowSlot]) {
		return nil, t.outOfMemory(op)
	}
	leaf, li := nodes[depth-1], slots[depth-1]
	var out []byte
	if swap >= 0 {
		target := nodes[swap]
		out = append([]byte(nil), t.item(target, slots[swap])...)
		t.setItem(target, slots[swap], t.item(leaf, li))
	} else {
		out = append([]byte(nil), t.item(leaf, li)...)
	}
	t.removeItemAt(leaf, li)
	for d := depth - 1; d > 0 && t.underflow(nodes[d]); d-- {
		t.rebalance(nodes[d-1], slots[d-1])
	}
	t.count--
	t.collapseRoot(op)
	return out, nil
}

// collapseRoot applies the root rules after a removal: an empty leaf root
// empties the tree, an internal root without items is replaced by its only
// child.
func (t *Tree) collapseRoot(op string) {
	if t.root == nil || t.root.n > 0 {
		return
	}
	old := t.root
	if old.leaf {
		t.root = nil
		t.height = 0
	} else {
		assert(len(old.children) == 1, "collapseRoot: empty root must have exactly one child")
		t.root = old.children[0]
		t.height--
		tracer().Debugf("btree %s: root collapsed, height now %d", op, t.height)
	}
	// The root was made exclusive on the removal path; its only child
	// reference has moved to the tree handle.
	t.freeNode(old)
}

func (t *Tree) outOfMemory(op string) error {
	t.nomem = true
	tracer().Infof("btree %s: allocation failed, tree left unchanged", op)
	return fmt.Errorf("%w: %s", ErrNoMemory, op)
}

// checkItem asserts that item has the configured size. Passing items of a
// different size is a violation of the caller's contract.
func (t *Tree) checkItem(item []byte) {
	assert(len(item) == t.cfg.ElemSize, "btree: item size does not match configured element size")
}

package btree

// nodeBytes is the size of a node's item buffer: MaxItems+1 items.
func (t *Tree) nodeBytes() int {
	return (t.cfg.MaxItems + 1) * t.cfg.ElemSize
}

// makeNode materializes a new, empty node backed by a buffer from the tree's
// allocator. It returns nil if the allocator fails.
func (t *Tree) makeNode(leaf bool) *node {
	buf := t.cfg.Allocator.Allocate(t.nodeBytes())
	if buf == nil {
		return nil
	}
	assert(len(buf) == t.nodeBytes(), "makeNode: allocator returned buffer of wrong size")
	nd := &node{buf: buf, leaf: leaf}
	if !leaf {
		nd.children = make([]*node, 0, t.cfg.MaxItems+2)
	}
	nd.rc.Store(1)
	return nd
}

// cloneNode creates an exclusively owned copy of nd. Children are shared with
// nd, therefore their share counts are incremented. Returns nil if the
// allocator fails, in which case nothing has changed.
func (t *Tree) cloneNode(nd *node) *node {
	c := t.makeNode(nd.leaf)
	if c == nil {
		return nil
	}
	c.n = nd.n
	copy(c.buf, nd.buf[:nd.n*t.cfg.ElemSize])
	if !nd.leaf {
		c.children = append(c.children, nd.children...)
		for _, child := range c.children {
			child.incRef()
		}
	}
	return c
}

// mut makes the node referenced by link exclusively owned, cloning it if it
// is shared with another tree handle, and redirects link to the mutable node.
// This enforces a copy-on-write policy: nodes are only copied the first time
// they are modified after a Copy.
//
// mut returns false if cloning failed for lack of memory; link is unchanged
// in that case.
func (t *Tree) mut(link **node) bool {
	if !(*link).shared() {
		return true
	}
	c := t.cloneNode(*link)
	if c == nil {
		return false
	}
	// We may race with another handle releasing its reference, so the
	// original is released properly instead of just decremented.
	t.release(*link)
	*link = c
	return true
}

// release drops one reference to nd. When the last reference is gone, the
// node's children are released recursively and its buffer is handed back to
// the allocator.
func (t *Tree) release(nd *node) {
	if nd == nil || nd.rc.Add(-1) > 0 {
		return
	}
	if !nd.leaf {
		for _, child := range nd.children {
			t.release(child)
		}
	}
	t.freeNode(nd)
}

// freeNode returns the buffer of an exclusively owned node to the allocator
// without touching its children. Callers use it for nodes whose children have
// been moved elsewhere.
func (t *Tree) freeNode(nd *node) {
	t.cfg.Allocator.Release(nd.buf)
	nd.buf = nil
	nd.children = nil
	nd.n = 0
}

// mutPath makes every node along a descent path exclusively owned. slots[d]
// is the child taken at depth d; the last entry is not followed. It returns
// the mutable nodes per depth, or false if a clone failed. Nodes cloned before
// a failure stay linked; they are equal in content to the originals.
func (t *Tree) mutPath(slots []int) ([]*node, bool) {
	nodes := make([]*node, len(slots))
	if !t.mut(&t.root) {
		return nil, false
	}
	nd := t.root
	for d := range slots {
		nodes[d] = nd
		if d+1 == len(slots) {
			break
		}
		if !t.mut(&nd.children[slots[d]]) {
			return nil, false
		}
		nd = nd.children[slots[d]]
	}
	return nodes, true
}

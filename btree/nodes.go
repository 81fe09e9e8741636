package btree

import "sync/atomic"

// node is a tree node holding up to MaxItems items, sorted by the tree's
// comparator.
//
// It must at all times maintain the invariant that either
//   - leaf is true and children is nil, or
//   - leaf is false and len(children) == n+1.
//
// Child i holds items strictly between item i-1 and item i.
type node struct {
	// rc is the share count. 1 means exclusively owned by one tree handle;
	// a node with rc > 1 is never mutated in place.
	rc atomic.Int32
	// n is the logical item count; valid items are buf[:n*elsize].
	n    int
	leaf bool
	// buf is the fixed backing storage for items, obtained from the tree's
	// allocator. It holds MaxItems+1 items, one slot for transient overflow
	// before a split.
	buf      []byte
	children []*node
}

// incRef acquires a reference to the node.
func (nd *node) incRef() {
	nd.rc.Add(1)
}

// shared reports whether another tree handle holds a reference to nd.
func (nd *node) shared() bool {
	return nd.rc.Load() > 1
}

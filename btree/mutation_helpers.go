package btree

import "sort"

// item returns a view of item i of nd. The view's capacity is clipped so that
// appending to it never spills into neighbouring items.
func (t *Tree) item(nd *node, i int) []byte {
	es := t.cfg.ElemSize
	return nd.buf[i*es : (i+1)*es : (i+1)*es]
}

// setItem overwrites item i of nd.
func (t *Tree) setItem(nd *node, i int, item []byte) {
	es := t.cfg.ElemSize
	copy(nd.buf[i*es:(i+1)*es], item)
}

// find returns the index where key belongs in nd. found is true if an equal
// item exists at that index.
func (t *Tree) find(nd *node, key []byte) (index int, found bool) {
	cmp, ctx := t.cfg.Compare, t.cfg.Context
	i := sort.Search(nd.n, func(i int) bool {
		return cmp(key, t.item(nd, i), ctx) <= 0
	})
	if i < nd.n && cmp(key, t.item(nd, i), ctx) == 0 {
		return i, true
	}
	return i, false
}

// insertItemAt inserts item at index i, pushing subsequent items forward.
// The node must have room, i.e. fewer than MaxItems+1 items.
func (t *Tree) insertItemAt(nd *node, i int, item []byte) {
	assert(nd.n <= t.cfg.MaxItems, "insertItemAt: node storage exhausted")
	assert(i >= 0 && i <= nd.n, "insertItemAt: index out of range")
	es := t.cfg.ElemSize
	copy(nd.buf[(i+1)*es:(nd.n+1)*es], nd.buf[i*es:nd.n*es])
	copy(nd.buf[i*es:(i+1)*es], item)
	nd.n++
}

// removeItemAt removes item i, pulling subsequent items back.
func (t *Tree) removeItemAt(nd *node, i int) {
	assert(i >= 0 && i < nd.n, "removeItemAt: index out of range")
	es := t.cfg.ElemSize
	copy(nd.buf[i*es:(nd.n-1)*es], nd.buf[(i+1)*es:nd.n*es])
	nd.n--
}

// insertChildAt inserts child at index i of an internal node.
func insertChildAt(nd *node, i int, child *node) {
	assert(!nd.leaf, "insertChildAt called on leaf")
	nd.children = append(nd.children, nil)
	copy(nd.children[i+1:], nd.children[i:])
	nd.children[i] = child
}

// removeChildAt removes and returns child i of an internal node.
func removeChildAt(nd *node, i int) *node {
	assert(!nd.leaf, "removeChildAt called on leaf")
	child := nd.children[i]
	copy(nd.children[i:], nd.children[i+1:])
	nd.children[len(nd.children)-1] = nil
	nd.children = nd.children[:len(nd.children)-1]
	return child
}

func (t *Tree) overflow(nd *node) bool {
	return nd.n > t.cfg.MaxItems
}

func (t *Tree) underflow(nd *node) bool {
	return nd.n < t.cfg.minItems()
}

// full reports whether inserting one more item into nd will force a split.
func (t *Tree) full(nd *node) bool {
	return nd.n >= t.cfg.MaxItems
}

// split splits an overflowing node around its median. Items (and children)
// after the median move to next, which must be an empty, exclusively owned
// node of the same kind. The median stays readable at index n of nd until
// nd is modified again; split returns its index.
//
//	before:  nd = [a b M c d]         after:  nd = [a b] (M) next = [c d]
func (t *Tree) split(nd *node, next *node) int {
	assert(t.overflow(nd), "split called on node without overflow")
	assert(next.n == 0 && next.leaf == nd.leaf, "split requires an empty sibling of same kind")
	es := t.cfg.ElemSize
	mid := nd.n / 2
	next.n = nd.n - mid - 1
	copy(next.buf, nd.buf[(mid+1)*es:nd.n*es])
	if !nd.leaf {
		next.children = append(next.children, nd.children[mid+1:]...)
		for i := mid + 1; i < len(nd.children); i++ {
			nd.children[i] = nil
		}
		nd.children = nd.children[:mid+1]
	}
	nd.n = mid
	return mid
}

// --- Rebalancing -----------------------------------------------------------

type rebalanceKind int

const (
	borrowLeft rebalanceKind = iota
	borrowRight
	mergeLeft
	mergeRight
)

// rebalancePolicy decides how to repair an underfull child at slot ci of
// parent: borrow-left, borrow-right, merge-left, merge-right, in this order of
// preference. It only reads node counts and may therefore be used for
// planning before any node is mutated.
func (t *Tree) rebalancePolicy(parent *node, ci int) (rebalanceKind, int) {
	min := t.cfg.minItems()
	hasLeft := ci > 0
	hasRight := ci < parent.n
	assert(hasLeft || hasRight, "rebalancePolicy: child has no siblings")
	switch {
	case hasLeft && parent.children[ci-1].n > min:
		return borrowLeft, ci - 1
	case hasRight && parent.children[ci+1].n > min:
		return borrowRight, ci + 1
	case hasLeft:
		return mergeLeft, ci - 1
	default:
		return mergeRight, ci + 1
	}
}

// rebalance repairs the underfull child at slot ci of parent. parent and the
// child must be exclusively owned; for borrowing, the donating sibling must be
// exclusively owned as well. Merging only reads the sibling, so it never needs
// to allocate.
func (t *Tree) rebalance(parent *node, ci int) {
	child := parent.children[ci]
	kind, si := t.rebalancePolicy(parent, ci)
	sibling := parent.children[si]
	switch kind {
	case borrowLeft:
		//     parent [.. y ..]            parent [.. x ..]
		//           /      \       =>           /      \
		//  left [.. x]   child [..]      left [..]   child [y ..]
		assert(!sibling.shared(), "rebalance: borrowing from shared sibling")
		t.insertItemAt(child, 0, t.item(parent, ci-1))
		t.setItem(parent, ci-1, t.item(sibling, sibling.n-1))
		t.removeItemAt(sibling, sibling.n-1)
		if !child.leaf {
			insertChildAt(child, 0, removeChildAt(sibling, len(sibling.children)-1))
		}
	case borrowRight:
		//     parent [.. y ..]            parent [.. x ..]
		//           /      \       =>           /      \
		//  child [..]   right [x ..]    child [.. y]   right [..]
		assert(!sibling.shared(), "rebalance: borrowing from shared sibling")
		t.insertItemAt(child, child.n, t.item(parent, ci))
		t.setItem(parent, ci, t.item(sibling, 0))
		t.removeItemAt(sibling, 0)
		if !child.leaf {
			child.children = append(child.children, removeChildAt(sibling, 0))
		}
	case mergeLeft:
		//     parent [.. y ..]            parent [.. ..]
		//           /      \       =>           |
		//  left [.. x]   child [z ..]     child [.. x y z ..]
		t.absorb(child, sibling, t.item(parent, ci-1), true)
		t.removeItemAt(parent, ci-1)
		removeChildAt(parent, ci-1)
		t.release(sibling)
	case mergeRight:
		//     parent [.. y ..]            parent [.. ..]
		//           /      \       =>           |
		//  child [.. x]   right [z ..]    child [.. x y z ..]
		t.absorb(child, sibling, t.item(parent, ci), false)
		t.removeItemAt(parent, ci)
		removeChildAt(parent, ci+1)
		t.release(sibling)
	}
}

// absorb merges the items and children of sibling plus the separator from the
// parent into the exclusively owned node dst. If front is true, sibling is the
// left neighbour and its content goes before dst's content.
//
// sibling is only read. Its children gain a reference from dst; the caller
// drops sibling's own reference afterwards, which balances the count if
// sibling was exclusively owned.
func (t *Tree) absorb(dst, sibling *node, sep []byte, front bool) {
	es := t.cfg.ElemSize
	total := dst.n + 1 + sibling.n
	assert(total <= t.cfg.MaxItems, "absorb: merged node exceeds capacity")
	if front {
		copy(dst.buf[(sibling.n+1)*es:total*es], dst.buf[:dst.n*es])
		copy(dst.buf, sibling.buf[:sibling.n*es])
		copy(dst.buf[sibling.n*es:(sibling.n+1)*es], sep)
	} else {
		copy(dst.buf[dst.n*es:(dst.n+1)*es], sep)
		copy(dst.buf[(dst.n+1)*es:total*es], sibling.buf[:sibling.n*es])
	}
	dst.n = total
	if dst.leaf {
		return
	}
	for _, child := range sibling.children {
		child.incRef()
	}
	if front {
		merged := make([]*node, 0, cap(dst.children))
		merged = append(merged, sibling.children...)
		dst.children = append(merged, dst.children...)
	} else {
		dst.children = append(dst.children, sibling.children...)
	}
}

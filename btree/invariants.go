package btree

import "fmt"

// Check validates structural tree invariants:
// items are strictly increasing in-order, all leaves are at the same depth,
// non-root nodes hold between MaxItems/2 and MaxItems items, internal nodes
// have one child more than items, and Count and Height agree with the
// structure. The lower bound is rounded down: for an odd MaxItems it is
// floor(MaxItems/2), e.g. 1 for MaxItems 3.
//
// Check is meant for tests and debugging; it walks the whole tree.
// Errors wrap ErrInvariant.
func (t *Tree) Check() error {
	if t == nil {
		return fmt.Errorf("%w: nil tree", ErrInvariant)
	}
	if t.root == nil {
		if t.height != 0 || t.count != 0 {
			return fmt.Errorf("%w: empty tree must have height=0 and count=0", ErrInvariant)
		}
		return nil
	}
	if t.height <= 0 {
		return fmt.Errorf("%w: non-empty tree must have height > 0", ErrInvariant)
	}
	if t.root.n == 0 {
		return fmt.Errorf("%w: root without items", ErrInvariant)
	}
	items, height, err := t.checkNode(t.root, true, nil, nil)
	if err != nil {
		return err
	}
	if height != t.height {
		return fmt.Errorf("%w: height mismatch (%d != %d)", ErrInvariant, height, t.height)
	}
	if items != t.count {
		return fmt.Errorf("%w: count mismatch (%d != %d)", ErrInvariant, items, t.count)
	}
	return nil
}

// checkNode checks the subtree at nd. lo and hi, if non-nil, are exclusive
// bounds for every item in the subtree.
func (t *Tree) checkNode(nd *node, isRoot bool, lo, hi []byte) (items int, height int, err error) {
	if nd == nil {
		return 0, 0, fmt.Errorf("%w: nil node", ErrInvariant)
	}
	if rc := nd.rc.Load(); rc < 1 {
		return 0, 0, fmt.Errorf("%w: reachable node with share count %d", ErrInvariant, rc)
	}
	if len(nd.buf) != t.nodeBytes() {
		return 0, 0, fmt.Errorf("%w: node buffer of %d bytes, expected %d",
			ErrInvariant, len(nd.buf), t.nodeBytes())
	}
	if nd.n > t.cfg.MaxItems {
		return 0, 0, fmt.Errorf("%w: node holds %d items, max is %d", ErrInvariant, nd.n, t.cfg.MaxItems)
	}
	if !isRoot && nd.n < t.cfg.minItems() {
		return 0, 0, fmt.Errorf("%w: node holds %d items, min is %d", ErrInvariant, nd.n, t.cfg.minItems())
	}
	cmp, ctx := t.cfg.Compare, t.cfg.Context
	for i := 0; i < nd.n; i++ {
		it := t.item(nd, i)
		if i > 0 && cmp(t.item(nd, i-1), it, ctx) >= 0 {
			return 0, 0, fmt.Errorf("%w: items %d and %d out of order", ErrInvariant, i-1, i)
		}
		if lo != nil && cmp(lo, it, ctx) >= 0 {
			return 0, 0, fmt.Errorf("%w: item %d not above parent separator", ErrInvariant, i)
		}
		if hi != nil && cmp(it, hi, ctx) >= 0 {
			return 0, 0, fmt.Errorf("%w: item %d not below parent separator", ErrInvariant, i)
		}
	}
	if nd.leaf {
		if nd.children != nil {
			return 0, 0, fmt.Errorf("%w: leaf with children", ErrInvariant)
		}
		return nd.n, 1, nil
	}
	if len(nd.children) != nd.n+1 {
		return 0, 0, fmt.Errorf("%w: internal node with %d items has %d children",
			ErrInvariant, nd.n, len(nd.children))
	}
	items = nd.n
	var childHeight int
	for i, child := range nd.children {
		clo, chi := lo, hi
		if i > 0 {
			clo = t.item(nd, i-1)
		}
		if i < nd.n {
			chi = t.item(nd, i)
		}
		cItems, cHeight, cErr := t.checkNode(child, false, clo, chi)
		if cErr != nil {
			return 0, 0, cErr
		}
		items += cItems
		if i == 0 {
			childHeight = cHeight
		} else if cHeight != childHeight {
			return 0, 0, fmt.Errorf("%w: non-uniform subtree heights", ErrInvariant)
		}
	}
	return items, childHeight + 1, nil
}

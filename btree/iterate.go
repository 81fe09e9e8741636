package btree

import "iter"

// All returns an iterator over all items in ascending order.
//
// Items are views into node storage, see Get. Mutating the tree handle while
// iterating is not allowed; restart the iteration after a mutation.
func (t *Tree) All() iter.Seq[[]byte] {
	return t.Ascend(nil)
}

// Backward returns an iterator over all items in descending order.
func (t *Tree) Backward() iter.Seq[[]byte] {
	return t.Descend(nil)
}

// Ascend returns an iterator over all items greater than or equal to pivot,
// in ascending order. A nil pivot starts at the smallest item.
func (t *Tree) Ascend(pivot []byte) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		if t == nil || t.root == nil {
			return
		}
		t.ascend(t.root, pivot, yield)
	}
}

// Descend returns an iterator over all items less than or equal to pivot,
// in descending order. A nil pivot starts at the largest item.
func (t *Tree) Descend(pivot []byte) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		if t == nil || t.root == nil {
			return
		}
		t.descend(t.root, pivot, yield)
	}
}

// ForEachItem walks items in-order.
//
// Iteration stops early if callback returns false.
func (t *Tree) ForEachItem(fn func(item []byte) bool) {
	if t == nil || t.root == nil || fn == nil {
		return
	}
	t.ascend(t.root, nil, fn)
}

// ascend visits child 0, item 0, child 1, … , item n-1, child n, skipping
// everything below pivot. Once past the pivot position, subtrees are walked
// unfiltered.
func (t *Tree) ascend(nd *node, pivot []byte, yield func([]byte) bool) bool {
	i, found := 0, false
	if pivot != nil {
		i, found = t.find(nd, pivot)
	}
	for ; i <= nd.n; i++ {
		if !nd.leaf && !found {
			if !t.ascend(nd.children[i], pivot, yield) {
				return false
			}
		}
		if i == nd.n {
			break
		}
		if !yield(t.item(nd, i)) {
			return false
		}
		pivot, found = nil, false
	}
	return true
}

// descend is the mirror image of ascend.
func (t *Tree) descend(nd *node, pivot []byte, yield func([]byte) bool) bool {
	i, found := nd.n, false
	if pivot != nil {
		i, found = t.find(nd, pivot)
	}
	if found {
		// child i+1 holds items greater than pivot
		if !yield(t.item(nd, i)) {
			return false
		}
		pivot = nil
	}
	for ; i >= 0; i-- {
		if !nd.leaf {
			if !t.descend(nd.children[i], pivot, yield) {
				return false
			}
		}
		pivot = nil
		if i == 0 {
			break
		}
		if !yield(t.item(nd, i-1)) {
			return false
		}
	}
	return true
}

package btree

// Get returns the item equal to key.
//
// The returned slice is a view into the tree's node storage. It is valid
// until the next mutation of this tree handle and must not be modified.
func (t *Tree) Get(key []byte) ([]byte, bool) {
	if t == nil || t.root == nil {
		return nil, false
	}
	nd := t.root
	for {
		i, found := t.find(nd, key)
		if found {
			return t.item(nd, i), true
		}
		if nd.leaf {
			return nil, false
		}
		nd = nd.children[i]
	}
}

// Has reports whether an item equal to key exists.
func (t *Tree) Has(key []byte) bool {
	_, ok := t.Get(key)
	return ok
}

// Min returns the smallest item, as a view like Get.
func (t *Tree) Min() ([]byte, bool) {
	if t == nil || t.root == nil {
		return nil, false
	}
	nd := t.root
	for !nd.leaf {
		nd = nd.children[0]
	}
	return t.item(nd, 0), true
}

// Max returns the largest item, as a view like Get.
func (t *Tree) Max() ([]byte, bool) {
	if t == nil || t.root == nil {
		return nil, false
	}
	nd := t.root
	for !nd.leaf {
		nd = nd.children[nd.n]
	}
	return t.item(nd, nd.n-1), true
}

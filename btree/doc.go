/*
Package btree provides an in-memory ordered container for fixed-size byte
records, backed by a balanced multi-way search tree.

The tree does not inspect its items. Ordering and equality are defined by a
client supplied three-way comparator, which receives an opaque context value
on every call. Items are copied by value into the tree; read-only accessors
hand out views into node storage which stay valid until the next mutation of
the same tree handle.

Trees are persistent in the copy-on-write sense: Copy is O(1) and returns an
independent handle sharing all nodes with the original. Every node carries a
share count, and a mutation clones a shared node before touching it, so
changes on one handle never become visible on another.

Node storage is obtained from an injectable Allocator. Mutations plan their
work and acquire every buffer they need before changing structure. If an
allocation fails, the operation returns ErrNoMemory, leaves the tree in a
consistent state, and sets a sticky flag reported by NoMemory.

Current status:
  - insert-or-replace, delete, pop-min/max with split, borrow and merge,
  - ascending bulk load along the right spine,
  - O(1) snapshots with path-copy on write,
  - pluggable allocators (heap, free list, memory budget),
  - in-order iteration via iter.Seq, pivoted ascend/descend,
  - invariant checker and debug output (text outline, Graphviz DOT).

A single tree handle must not be mutated concurrently. Distinct handles
obtained through Copy may be used from different goroutines, provided the
allocator is safe for concurrent use.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package btree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tinydb.btree'.
func tracer() tracing.Trace {
	return tracing.Select("tinydb.btree")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}

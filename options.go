package tinydb

import (
	"fmt"

	"github.com/npillmayer/tinydb/btree"
)

// Options configure a table.
type Options struct {
	// MaxItems is the number of rows per tree node. 0 selects
	// btree.DefaultMaxItems.
	MaxItems int
	// MaxRows caps the number of rows in the table. 0 selects TableMaxRows.
	MaxRows int
	// Allocator provides storage for tree nodes. nil selects btree.Heap.
	Allocator btree.Allocator
}

// DefaultOptions returns options for a table of TableMaxRows rows.
func DefaultOptions() Options {
	return Options{
		MaxItems: btree.DefaultMaxItems,
		MaxRows:  TableMaxRows,
	}
}

func (o Options) normalized() Options {
	if o.MaxItems == 0 {
		o.MaxItems = btree.DefaultMaxItems
	}
	if o.MaxRows == 0 {
		o.MaxRows = TableMaxRows
	}
	if o.Allocator == nil {
		o.Allocator = btree.Heap
	}
	return o
}

func (o Options) validate() error {
	o = o.normalized()
	if o.MaxRows < 0 {
		return fmt.Errorf("%w: max rows must not be negative, is %d", ErrIllegalArguments, o.MaxRows)
	}
	return nil
}

func (o Options) treeConfig() btree.Config {
	return btree.Config{
		ElemSize:  RowSize,
		MaxItems:  o.MaxItems,
		Compare:   compareRecords,
		Allocator: o.Allocator,
	}
}

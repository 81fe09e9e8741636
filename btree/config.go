package btree

import "fmt"

const (
	// DefaultMaxItems is the node capacity used when Config.MaxItems is 0.
	DefaultMaxItems = 32
	// MinMaxItems is the smallest node capacity which allows meaningful splits.
	MinMaxItems = 3
)

// CompareFunc orders two items three-way: negative if a < b, zero if a and b
// are equal, positive if a > b. ctx is the Context value of the tree's Config.
//
// The function must implement a total order over all items stored in a tree.
type CompareFunc func(a, b []byte, ctx any) int

// Config configures a tree.
type Config struct {
	// ElemSize is the fixed size of every item in bytes.
	ElemSize int
	// MaxItems is the maximum number of items per node (the tree's order).
	// 0 selects DefaultMaxItems.
	MaxItems int
	// Compare orders items.
	Compare CompareFunc
	// Context is handed to every Compare call.
	Context any
	// Allocator provides node storage. nil selects Heap.
	Allocator Allocator
}

func (cfg Config) normalized() Config {
	if cfg.MaxItems == 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	if cfg.Allocator == nil {
		cfg.Allocator = Heap
	}
	return cfg
}

func (cfg Config) validate() error {
	cfg = cfg.normalized()
	if cfg.ElemSize <= 0 {
		return fmt.Errorf("%w: element size must be positive, is %d", ErrInvalidConfig, cfg.ElemSize)
	}
	if cfg.MaxItems < MinMaxItems {
		return fmt.Errorf("%w: max items must be >= %d, is %d", ErrInvalidConfig, MinMaxItems, cfg.MaxItems)
	}
	if cfg.Compare == nil {
		return fmt.Errorf("%w: compare function is required", ErrInvalidConfig)
	}
	return nil
}

// minItems is the lower occupancy bound for non-root nodes.
//
// Splitting MaxItems+1 items around the median yields two halves of at least
// MaxItems/2 items, and merging an underfull node with a minimal sibling plus
// separator yields at most MaxItems items.
func (cfg Config) minItems() int {
	return cfg.MaxItems / 2
}

package btree

import "errors"

var (
	// ErrInvalidConfig signals an invalid tree configuration.
	ErrInvalidConfig = errors.New("btree: invalid configuration")
	// ErrNoMemory signals that the allocator could not provide node storage.
	// The tree is left consistent and NoMemory reports true until the next
	// mutating call.
	ErrNoMemory = errors.New("btree: out of memory")
	// ErrInvariant signals a violated structural invariant, reported by Check.
	ErrInvariant = errors.New("btree: invariant violated")
)

package btree

import (
	"sync"
)

// Allocator provides byte buffers for node storage.
//
// Allocate returns a buffer of exactly size bytes, or nil if no memory is
// available. Release hands a buffer back; the tree never touches a buffer
// after releasing it. Allocators shared between trees (including trees
// created with Copy) must be safe for concurrent use.
type Allocator interface {
	Allocate(size int) []byte
	Release(buf []byte)
}

// Heap is the default allocator. It takes buffers from the Go heap and leaves
// released buffers to the garbage collector.
var Heap Allocator = heapAllocator{}

type heapAllocator struct{}

func (heapAllocator) Allocate(size int) []byte { return make([]byte, size) }
func (heapAllocator) Release([]byte)           {}

// --- Free list -------------------------------------------------------------

// DefaultFreeListSize is the number of buffers per size a FreeList retains.
const DefaultFreeListSize = 32

// FreeList recycles released node buffers. Several trees, in particular trees
// created with Copy, may share one FreeList; it is safe for concurrent use.
type FreeList struct {
	mu       sync.Mutex
	parent   Allocator
	capacity int
	free     map[int][][]byte
}

// NewFreeList creates a free list retaining up to size buffers per buffer
// length. Buffers are drawn from parent when the list is empty; a nil parent
// selects Heap.
func NewFreeList(size int, parent Allocator) *FreeList {
	if parent == nil {
		parent = Heap
	}
	if size <= 0 {
		size = DefaultFreeListSize
	}
	return &FreeList{
		parent:   parent,
		capacity: size,
		free:     make(map[int][][]byte),
	}
}

// Allocate pops a recycled buffer of the requested size or asks the parent
// allocator for a fresh one.
func (f *FreeList) Allocate(size int) []byte {
	f.mu.Lock()
	list := f.free[size]
	if index := len(list) - 1; index >= 0 {
		buf := list[index]
		list[index] = nil
		f.free[size] = list[:index]
		f.mu.Unlock()
		return buf
	}
	f.mu.Unlock()
	return f.parent.Allocate(size)
}

// Release keeps buf for reuse, or returns it to the parent allocator if the
// list for its size is full.
func (f *FreeList) Release(buf []byte) {
	if buf == nil {
		return
	}
	f.mu.Lock()
	list := f.free[len(buf)]
	if len(list) < f.capacity {
		f.free[len(buf)] = append(list, buf)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	f.parent.Release(buf)
}

// Len returns the number of buffers currently held for reuse.
func (f *FreeList) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, list := range f.free {
		n += len(list)
	}
	return n
}

// --- Memory budget ---------------------------------------------------------

// Budget caps the number of bytes outstanding from a parent allocator.
// Allocations which would exceed the limit fail. Budget is safe for
// concurrent use.
type Budget struct {
	mu     sync.Mutex
	parent Allocator
	limit  int
	inUse  int
	fails  int
}

// NewBudget creates an allocator handing out at most limit bytes at a time.
// A nil parent selects Heap.
func NewBudget(limit int, parent Allocator) *Budget {
	if parent == nil {
		parent = Heap
	}
	return &Budget{parent: parent, limit: limit}
}

// Allocate returns a buffer from the parent allocator if the budget allows.
func (b *Budget) Allocate(size int) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inUse+size > b.limit {
		b.fails++
		return nil
	}
	buf := b.parent.Allocate(size)
	if buf == nil {
		b.fails++
		return nil
	}
	b.inUse += size
	return buf
}

// Release returns buf to the parent and credits the budget.
func (b *Budget) Release(buf []byte) {
	if buf == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inUse -= len(buf)
	assert(b.inUse >= 0, "budget released more bytes than allocated")
	b.parent.Release(buf)
}

// SetLimit changes the budget. Outstanding buffers are not affected.
func (b *Budget) SetLimit(limit int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.limit = limit
}

// InUse returns the number of bytes currently handed out.
func (b *Budget) InUse() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inUse
}

// Failures returns the number of allocation requests refused so far.
func (b *Budget) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fails
}

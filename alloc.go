package weave

import "sync"

type (
	// Allocator is the node allocation capability consumed by [Deque]. It is
	// specified as non-failing: any inability to produce a node is a fatal
	// condition below this abstraction level, never an error result.
	//
	// Thread safety is the allocator's own concern. The deque calls Allocate
	// and Free exactly once per node lifecycle edge, and imposes no further
	// discipline.
	Allocator[P any] interface {
		// Allocate returns a new, unlinked node.
		Allocate() P

		// Free releases a node. The node must be unlinked.
		Free(P)
	}

	// PoolAllocator is a [sync.Pool]-backed Allocator. Nodes are recycled
	// across Allocate/Free cycles, with link fields cleared on both edges,
	// and an optional reset hook applied on Free so recycled nodes do not
	// retain references (e.g. task closures) that would otherwise leak.
	//
	// PoolAllocator is safe for concurrent use, making it suitable for
	// sharing between workers that free each other's stolen nodes.
	PoolAllocator[P Node[P]] struct {
		pool  sync.Pool
		reset func(P)
	}

	// funcAllocator adapts a plain constructor, leaving release to the GC.
	funcAllocator[P Node[P]] struct {
		newFn func() P
	}
)

// NewPoolAllocator returns a PoolAllocator producing nodes via newFn. The
// reset hook, if non-nil, is applied to every node on Free, before it is
// returned to the pool. A nil newFn will cause a panic.
func NewPoolAllocator[P Node[P]](newFn func() P, reset func(P)) *PoolAllocator[P] {
	if newFn == nil {
		panic(`weave: nil node constructor`)
	}
	x := &PoolAllocator[P]{reset: reset}
	x.pool.New = func() any { return newFn() }
	return x
}

// Allocate returns a pooled or newly-constructed node, with cleared links.
func (x *PoolAllocator[P]) Allocate() P {
	p := x.pool.Get().(P)
	p.Links().clear()
	return p
}

// Free clears the node's links, applies the reset hook, and returns the node
// to the pool. A zero node will cause a panic.
func (x *PoolAllocator[P]) Free(p P) {
	var zero P
	if p == zero {
		panic(`weave: free of zero node`)
	}
	p.Links().clear()
	if x.reset != nil {
		x.reset(p)
	}
	x.pool.Put(p)
}

// NewAllocator returns the simplest possible Allocator: newFn on Allocate,
// garbage collection on Free. A nil newFn will cause a panic.
func NewAllocator[P Node[P]](newFn func() P) Allocator[P] {
	if newFn == nil {
		panic(`weave: nil node constructor`)
	}
	return &funcAllocator[P]{newFn: newFn}
}

func (x *funcAllocator[P]) Allocate() P {
	p := x.newFn()
	p.Links().clear()
	return p
}

func (x *funcAllocator[P]) Free(p P) {
	var zero P
	if p == zero {
		panic(`weave: free of zero node`)
	}
	p.Links().clear()
}

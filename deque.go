package weave

// Deque is a worker-local, non-atomic work-stealing deque: an intrusive,
// sentinel-delimited doubly-linked chain with a pending count.
//
// The owner pushes and pops single nodes at the front ([Deque.PushFront],
// [Deque.PopFront]); batches of up to an arbitrary count are detached from
// the opposite, sentinel-adjacent end ([Deque.StealBatch]) and attached in
// front of a head in one splice ([Deque.SpliceFront]). All operations are
// O(1), except StealBatch, which is O(k) in the number of nodes detached.
//
// Deque is NOT thread-safe: it contains no locks and no atomics. Exactly one
// owner may access it at a time; transfer of work to another goroutine must
// happen via an already-detached [Batch]. See the package documentation.
//
// Instances must be created via [New], and released via [Deque.Destroy].
type Deque[P Node[P]] struct {
	// head is the node nearest the owner-access end: next to be popped,
	// most recently pushed. Equal to tail when the deque is empty.
	head P

	// tail is the sentinel, fixed for the deque's entire lifetime. Its prev
	// link is the real node nearest the far end, or zero when empty.
	tail P

	// pending is the number of real (non-sentinel) linked nodes.
	pending int

	alloc Allocator[P]
}

// New creates an empty deque, allocating its sentinel node from alloc. The
// sentinel never carries work and is never returned by any operation. A nil
// alloc will cause a panic.
func New[P Node[P]](alloc Allocator[P]) *Deque[P] {
	if alloc == nil {
		panic(`weave: nil allocator`)
	}
	sentinel := alloc.Allocate()
	var zero P
	if sentinel == zero {
		panic(`weave: allocator returned zero node`)
	}
	if sentinel.Links().linked() {
		panic(`weave: allocator returned linked node`)
	}
	return &Deque[P]{
		head:  sentinel,
		tail:  sentinel,
		alloc: alloc,
	}
}

// IsEmpty returns true iff the deque holds no work.
func (x *Deque[P]) IsEmpty() bool {
	return x.head == x.tail
}

// Len returns the number of pending nodes.
func (x *Deque[P]) Len() int {
	return x.pending
}

// PushFront links p immediately in front of the current head, making it the
// next node to be popped. O(1).
//
// A zero p, or a p still linked into some chain, indicates a bug in the
// caller and will cause a panic.
func (x *Deque[P]) PushFront(p P) {
	var zero P
	if p == zero {
		panic(`weave: push of zero node`)
	}
	l := p.Links()
	if l.linked() {
		panic(`weave: push of linked node`)
	}
	l.next = x.head
	x.head.Links().prev = p
	x.head = p
	x.pending++
	if debugChecks {
		x.verify()
	}
}

// PopFront detaches and returns the head node, with its links cleared and
// ownership transferred to the caller. The false result is the empty signal:
// no work available, not an error. O(1).
func (x *Deque[P]) PopFront() (P, bool) {
	var zero P
	if x.head == x.tail {
		return zero, false
	}
	p := x.head
	l := p.Links()
	x.head = l.next
	x.head.Links().prev = zero
	l.clear()
	x.pending--
	if debugChecks {
		x.verify()
	}
	return p, true
}

// SpliceFront attaches an externally-assembled batch in front of the current
// head in a single O(1) splice; b.Head becomes the new head. The batch must
// be well formed per [Batch]: non-zero Head and Tail, positive Count, Tail's
// next link clear. Violations indicate a bug in the caller and will cause a
// panic. When debug checks are enabled the chain is additionally walked to
// confirm Count matches the true length; this walk is elided otherwise.
func (x *Deque[P]) SpliceFront(b Batch[P]) {
	var zero P
	if b.Head == zero || b.Tail == zero {
		panic(`weave: splice of zero batch`)
	}
	if b.Count <= 0 {
		panic(`weave: splice of non-positive count`)
	}
	if b.Tail.Links().next != zero {
		panic(`weave: splice of attached batch`)
	}
	if debugChecks {
		verifyBatch(b)
	}
	b.Head.Links().prev = zero
	b.Tail.Links().next = x.head
	x.head.Links().prev = b.Tail
	x.head = b.Head
	x.pending += b.Count
	if debugChecks {
		x.verify()
	}
}

// StealBatch detaches up to n nodes from the far (sentinel-adjacent) end,
// returning them as a single self-contained [Batch] whose ownership
// transfers to the caller. The actual count is min(n, Len()); when n covers
// everything pending, the deque is drained to empty in one call. The steal
// granularity is deliberately a caller decision, not deque policy. O(k) in
// the actual count.
//
// The false result is the empty signal. A non-positive n indicates a bug in
// the caller and will cause a panic.
func (x *Deque[P]) StealBatch(n int) (Batch[P], bool) {
	if n <= 0 {
		panic(`weave: non-positive steal count`)
	}
	if x.pending == 0 {
		return Batch[P]{}, false
	}

	count := n
	if count > x.pending {
		count = x.pending
	}

	var zero P

	// Tail of the batch is the far-most real node; walk prev toward the
	// owner end to find the batch head, preserving internal links.
	bt := x.tail.Links().prev
	bh := bt
	for i := 1; i < count; i++ {
		bh = bh.Links().prev
	}

	if count == x.pending {
		// Drained: only the sentinel remains.
		x.head = x.tail
		x.tail.Links().prev = zero
	} else {
		boundary := bh.Links().prev
		boundary.Links().next = x.tail
		x.tail.Links().prev = boundary
	}
	bh.Links().prev = zero
	bt.Links().next = zero
	x.pending -= count

	if debugChecks {
		x.verify()
	}

	return Batch[P]{Head: bh, Tail: bt, Count: count}, true
}

// Destroy drains and frees any still-linked nodes from the far end, then
// frees the sentinel, consuming the deque. Draining discards queued work -
// it is a resource-leak guard, not an execution guarantee. Destroy panics if
// the deque's invariants do not hold at teardown (a corrupted deque must not
// be silently destroyed), or if the deque was already destroyed.
func (x *Deque[P]) Destroy() {
	var zero P
	if x.tail == zero {
		panic(`weave: destroy of destroyed deque`)
	}
	for {
		b, ok := x.StealBatch(destroyDrainBatch)
		if !ok {
			break
		}
		b.Release(x.alloc)
	}
	if x.pending != 0 || !x.IsEmpty() || x.tail.Links().linked() {
		panic(`weave: deque corrupted at teardown`)
	}
	sentinel := x.tail
	x.head = zero
	x.tail = zero
	x.alloc.Free(sentinel)
	x.alloc = nil
}

// destroyDrainBatch bounds the per-step detach during Destroy; teardown is
// O(n) overall regardless.
const destroyDrainBatch = 64

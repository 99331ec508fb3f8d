package weave

// Batch is the unit of bulk transfer between deques: a self-contained,
// doubly-linked chain of Count nodes, with no links into or out of any deque.
// Each node's next link leads toward Tail and its prev link back toward Head;
// both directions must be consistent, as splicing relies on the back links.
// Head is the end nearest the owner-access end of the donor (first to be
// popped after a splice), Tail the end nearest the donor's far end, and the
// boundary links, Head's prev and Tail's next, are clear.
//
// Ownership of the whole chain transfers with the Batch value; the holder is
// responsible for eventually splicing it into a deque, handing it to a
// transport such as [Handoff], or releasing each node to an [Allocator].
type Batch[P Node[P]] struct {
	Head  P
	Tail  P
	Count int
}

// Each calls fn for every node in the batch, Head first. The chain is not
// modified; fn must not rewire links.
func (x Batch[P]) Each(fn func(P)) {
	var zero P
	for p := x.Head; p != zero; p = p.Links().next {
		fn(p)
	}
}

// Release detaches every node in the batch and frees it via alloc, consuming
// the chain. A nil alloc will cause a panic.
func (x Batch[P]) Release(alloc Allocator[P]) {
	if alloc == nil {
		panic(`weave: nil allocator`)
	}
	var zero P
	for p := x.Head; p != zero; {
		next := p.Links().next
		p.Links().clear()
		alloc.Free(p)
		p = next
	}
}

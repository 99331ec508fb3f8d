package weave

// debugChecks gates the O(n) structural validation performed by verify and
// verifyBatch. It is off by default, keeping every operation at its
// documented cost, and is enabled by tests.
var debugChecks = false

// verify walks the full chain and panics unless the linkage invariants hold:
// every back link consistent with its forward link, the sentinel reachable
// from the head, the sentinel's prev equal to the far-most real node (zero
// when empty), and the pending count equal to the number of real nodes.
func (x *Deque[P]) verify() {
	var zero P
	var prev P
	n := 0
	for p := x.head; p != x.tail; p = p.Links().next {
		if p == zero {
			panic(`weave: broken chain`)
		}
		if p.Links().prev != prev {
			panic(`weave: broken back link`)
		}
		prev = p
		n++
		if n > x.pending {
			panic(`weave: pending count mismatch`)
		}
	}
	if x.tail.Links().prev != prev {
		panic(`weave: broken sentinel link`)
	}
	if n != x.pending {
		panic(`weave: pending count mismatch`)
	}
	if x.pending < 0 {
		panic(`weave: negative pending count`)
	}
}

// verifyBatch walks b.Head to b.Tail and panics unless the chain is a
// detached, consistently doubly-linked run of exactly b.Count nodes: the
// caller-supplied count matches the true length, every back link mirrors its
// forward link, and Head's prev is clear.
func verifyBatch[P Node[P]](b Batch[P]) {
	var zero P
	if b.Head.Links().prev != zero {
		panic(`weave: batch head not detached`)
	}
	p := b.Head
	for i := 1; i < b.Count; i++ {
		next := p.Links().next
		if next == zero {
			panic(`weave: batch count mismatch`)
		}
		if next.Links().prev != p {
			panic(`weave: broken batch back link`)
		}
		p = next
	}
	if p != b.Tail || p.Links().next != zero {
		panic(`weave: batch count mismatch`)
	}
}

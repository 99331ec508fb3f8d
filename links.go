package weave

type (
	// Links holds the intrusive prev/next pointers of a queued node. Embed a
	// Links value in your task type, and expose it via a Links method, to
	// satisfy the [Node] contract.
	//
	// Ownership of the link fields is structural: whichever chain currently
	// holds the node owns them. A node with both fields zero is unlinked.
	Links[P comparable] struct {
		prev P
		next P
	}

	// Node is the capability a type must provide to be queued in a [Deque]:
	// comparability (so the zero value can act as the nil link), and access
	// to its embedded [Links]. P is expected to be a pointer type, e.g.
	//
	//	type job struct {
	//		links weave.Links[*job]
	//		run   func()
	//	}
	//
	//	func (x *job) Links() *weave.Links[*job] { return &x.links }
	//
	// The deque is generic over this contract, not over any concrete task
	// type, and never reads a node beyond its links.
	Node[P comparable] interface {
		comparable
		Links() *Links[P]
	}
)

// linked returns true if the node participates in a chain, i.e. either link
// field is set.
func (x *Links[P]) linked() bool {
	var zero P
	return x.prev != zero || x.next != zero
}

// clear resets both link fields, detaching the node from whatever chain the
// caller just removed it from.
func (x *Links[P]) clear() {
	*x = Links[P]{}
}

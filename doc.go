// Package weave provides a worker-local work-stealing deque for
// task-parallel runtimes, plus a small reference runtime built on top of it.
//
// # Architecture
//
// The core type is [Deque], an intrusive, sentinel-delimited doubly-linked
// chain. The owning worker pushes and pops single tasks at the front
// ([Deque.PushFront], [Deque.PopFront]), giving LIFO locality for locally
// generated work. Batches of tasks are removed from the opposite end in one
// structural operation ([Deque.StealBatch]) and attached in front of another
// deque's head ([Deque.SpliceFront]), so redistribution of work is O(1) in
// link rewiring and O(k) only in locating the k-th node from the far end.
//
// Task nodes are produced and destroyed through an [Allocator], and any type
// embedding [Links] and exposing it via the [Node] contract can be queued.
// The deque never inspects a node beyond its link fields.
//
// # Thread Safety
//
// Deque is NOT thread-safe, by design. It performs no locking and no atomic
// operations; all access must come from a single owner at a time. Cross-thread
// transfer of work happens only as a hand-off of an already-detached
// [Batch] - a self-contained chain with no links into the donor - through a
// channel-based transport such as [Handoff]. The reference [Pool] follows
// this model: thieves never touch a victim's deque; they send a request, and
// the owner detaches a batch on its own goroutine and replies with it.
//
// # Errors
//
// Misuse (zero nodes, already-linked nodes, mismatched batch counts,
// non-positive steal counts) indicates a bug in the surrounding runtime and
// panics rather than corrupting the chain. "No work available" is not an
// error; it is reported as an explicit empty signal, e.g. the false result
// of [Deque.PopFront].
package weave

package weave

// Task is the runnable node type used by the reference [Pool] runtime, and a
// convenient default for callers that do not need a custom node type. The
// deque treats Run as opaque; it is invoked, and cleared, only by the worker
// executing the task.
type Task struct {
	links Links[*Task]

	// Run is the task's payload. Never invoked for sentinel nodes.
	Run func()
}

// Links exposes the intrusive link fields, satisfying [Node].
func (x *Task) Links() *Links[*Task] { return &x.links }

// NewTaskAllocator returns the pool-backed allocator used by default for
// [Task] nodes: recycled via [PoolAllocator], with the Run closure cleared
// on Free so recycled nodes never retain stale payloads.
func NewTaskAllocator() *PoolAllocator[*Task] {
	return NewPoolAllocator(
		func() *Task { return new(Task) },
		func(t *Task) { t.Run = nil },
	)
}

package weave

import "errors"

var (
	// ErrPoolClosed is returned by [Pool.Submit] once the pool has been
	// stopped via [Pool.Close] or [Pool.Shutdown].
	ErrPoolClosed = errors.New(`weave: pool closed`)

	// ErrHandoffClosed is returned by [Handoff.Send] once the handoff has
	// been closed. The receive side drains any buffered batches and then
	// reports [io.EOF].
	ErrHandoffClosed = errors.New(`weave: handoff closed`)
)

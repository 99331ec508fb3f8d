package weave

import (
	"context"
	"io"
	"sync"
)

// Handoff is a channel-based transport for detached [Batch] chains: the
// mechanism by which ownership of stolen work crosses goroutines. The deque
// itself performs no synchronization; a batch must be fully detached before
// it is sent, and is owned exclusively by the receiver afterwards.
//
// Handoff is safe for concurrent use. Instances must be created via
// [NewHandoff].
type Handoff[P Node[P]] struct {
	ch        chan Batch[P]
	done      chan struct{}
	closeOnce sync.Once
}

// NewHandoff creates a handoff with the given buffer depth. A depth of 0
// makes Send a rendezvous: it succeeds only while a receiver is waiting,
// which lets a sender reliably detect an abandoned receiver (and, e.g.,
// splice the batch back rather than leak it). A negative depth will cause a
// panic.
func NewHandoff[P Node[P]](depth int) *Handoff[P] {
	if depth < 0 {
		panic(`weave: negative handoff depth`)
	}
	return &Handoff[P]{
		ch:   make(chan Batch[P], depth),
		done: make(chan struct{}),
	}
}

// Send transfers b to the receive side, blocking until the batch is
// accepted, ctx is done, or the handoff is closed. On a non-nil error the
// caller retains ownership of b. A nil ctx will cause a panic.
func (x *Handoff[P]) Send(ctx context.Context, b Batch[P]) error {
	if ctx == nil {
		panic(`weave: nil context`)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-x.done:
		return ErrHandoffClosed
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-x.done:
		return ErrHandoffClosed
	case x.ch <- b:
		return nil
	}
}

// TrySend is the non-blocking variant of Send: it transfers b only if the
// receive side can accept it immediately, returning false (caller keeps
// ownership) otherwise, including after close.
func (x *Handoff[P]) TrySend(b Batch[P]) bool {
	select {
	case <-x.done:
		return false
	default:
	}
	select {
	case x.ch <- b:
		return true
	case <-x.done:
		return false
	default:
		return false
	}
}

// Recv blocks until a batch is available, ctx is done, or the handoff is
// closed and drained. Batches buffered at close time are still delivered;
// once drained, Recv returns [io.EOF]. A nil ctx will cause a panic.
func (x *Handoff[P]) Recv(ctx context.Context) (Batch[P], error) {
	if ctx == nil {
		panic(`weave: nil context`)
	}
	var zero Batch[P]
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	// Prefer buffered data over a concurrently-closed done channel.
	select {
	case b := <-x.ch:
		return b, nil
	default:
	}
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case b := <-x.ch:
		return b, nil
	case <-x.done:
		select {
		case b := <-x.ch:
			return b, nil
		default:
			return zero, io.EOF
		}
	}
}

// TryRecv is the non-blocking variant of Recv, returning false if no batch
// is immediately available.
func (x *Handoff[P]) TryRecv() (Batch[P], bool) {
	select {
	case b := <-x.ch:
		return b, true
	default:
		return Batch[P]{}, false
	}
}

// Close marks the handoff closed. Further sends fail; buffered batches
// remain receivable. Close is idempotent and safe to call concurrently with
// Send and Recv.
func (x *Handoff[P]) Close() {
	x.closeOnce.Do(func() {
		close(x.done)
	})
}

package weave

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testBatch(n int) Batch[*Task] {
	d := New[*Task](NewAllocator(func() *Task { return new(Task) }))
	for i := 0; i < n; i++ {
		d.PushFront(new(Task))
	}
	b, ok := d.StealBatch(n)
	if !ok {
		panic(`testBatch: empty steal`)
	}
	return b
}

func TestHandoff_roundTrip(t *testing.T) {
	h := NewHandoff[*Task](1)
	ctx := context.Background()

	b := testBatch(3)
	require.NoError(t, h.Send(ctx, b))

	got, err := h.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, got.Count)
	require.Same(t, b.Head, got.Head)
	require.Same(t, b.Tail, got.Tail)
}

func TestHandoff_trySendTryRecv(t *testing.T) {
	h := NewHandoff[*Task](1)

	_, ok := h.TryRecv()
	require.False(t, ok)

	require.True(t, h.TrySend(testBatch(1)))
	require.False(t, h.TrySend(testBatch(1)), `buffer full`)

	got, ok := h.TryRecv()
	require.True(t, ok)
	require.Equal(t, 1, got.Count)
}

func TestHandoff_unbufferedTrySendNeedsReceiver(t *testing.T) {
	h := NewHandoff[*Task](0)
	require.False(t, h.TrySend(testBatch(1)), `no receiver waiting`)

	recvd := make(chan Batch[*Task], 1)
	go func() {
		b, err := h.Recv(context.Background())
		if err != nil {
			close(recvd)
			return
		}
		recvd <- b
	}()

	b := testBatch(2)
	for !h.TrySend(b) {
		time.Sleep(time.Millisecond) // wait for the receiver to block
	}
	got := <-recvd
	require.Equal(t, 2, got.Count)
}

func TestHandoff_closeSemantics(t *testing.T) {
	h := NewHandoff[*Task](2)
	ctx := context.Background()

	require.NoError(t, h.Send(ctx, testBatch(1)))
	h.Close()
	h.Close() // idempotent

	require.ErrorIs(t, h.Send(ctx, testBatch(1)), ErrHandoffClosed)
	require.False(t, h.TrySend(testBatch(1)))

	// Buffered batch still delivered, then EOF.
	got, err := h.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, got.Count)

	_, err = h.Recv(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func TestHandoff_contextCancel(t *testing.T) {
	h := NewHandoff[*Task](0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Recv(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, h.Send(ctx, testBatch(1)), context.Canceled)

	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel2()
	_, err = h.Recv(ctx2)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHandoff_misusePanics(t *testing.T) {
	require.PanicsWithValue(t, `weave: negative handoff depth`, func() {
		NewHandoff[*Task](-1)
	})
	h := NewHandoff[*Task](0)
	require.PanicsWithValue(t, `weave: nil context`, func() {
		_ = h.Send(nil, Batch[*Task]{}) //nolint:staticcheck
	})
	require.PanicsWithValue(t, `weave: nil context`, func() {
		_, _ = h.Recv(nil) //nolint:staticcheck
	})
}

package weave_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/doytsujin/weave"
)

// Demonstrates the owner/thief split: LIFO pops at the front, batched
// removal from the opposite end.
func ExampleDeque() {
	alloc := weave.NewTaskAllocator()
	d := weave.New[*weave.Task](alloc)

	for _, name := range []string{`a`, `b`, `c`} {
		name := name
		t := alloc.Allocate()
		t.Run = func() { fmt.Println(`run`, name) }
		d.PushFront(t)
	}

	// The owner pops the most recent push first.
	t, _ := d.PopFront()
	t.Run()
	alloc.Free(t)

	// A thief takes everything else from the far end, as one chain.
	b, _ := d.StealBatch(8)
	fmt.Println(`stolen:`, b.Count, `empty:`, d.IsEmpty())
	b.Each(func(t *weave.Task) { t.Run() })
	b.Release(alloc)

	d.Destroy()

	// Output:
	// run c
	// stolen: 2 empty: true
	// run b
	// run a
}

func ExamplePool() {
	pool, err := weave.NewPool(weave.WithWorkers(4))
	if err != nil {
		panic(err)
	}

	var sum atomic.Int64
	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			sum.Add(int64(i))
			wg.Done()
		}); err != nil {
			panic(err)
		}
	}
	wg.Wait()

	if err := pool.Shutdown(context.Background()); err != nil {
		panic(err)
	}

	fmt.Println(`sum:`, sum.Load())

	// Output:
	// sum: 55
}

package weave

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
)

const (
	// defaultQueueDepth is the per-worker inbox buffer, see WithQueueDepth.
	defaultQueueDepth = 128

	// stealWait bounds how long a thief waits for a victim to answer a
	// steal request. Victims only answer between tasks, so a busy victim
	// simply lets the request lapse.
	stealWait = time.Millisecond

	// parkInterval is how long a dry worker sleeps before retrying a steal.
	parkInterval = time.Millisecond
)

type (
	// Pool is a reference work-stealing runtime: one worker goroutine per
	// [Deque], LIFO execution of locally submitted work, and batched
	// redistribution when a worker runs dry. Thieves never access a
	// victim's deque; they send a request over a channel, and the owner
	// detaches a [Batch] on its own goroutine and hands it back through an
	// unbuffered [Handoff]. The deques themselves therefore need, and use,
	// no synchronization.
	//
	// Instances must be initialized using the NewPool factory. The
	// Pool.Close method and/or Pool.Shutdown method should be called when
	// the Pool is no longer needed.
	Pool struct {
		workers        []*worker
		alloc          Allocator[*Task]
		logger         *logiface.Logger[logiface.Event]
		stealBatchSize int
		ctx            context.Context
		cancel         context.CancelFunc
		done           chan struct{}
		stopped        chan struct{}
		stopOnce       sync.Once
		// submitMu orders inbox deposits before close(stopped): Submit
		// holds it shared across the stopped check and any buffered send,
		// stop takes it exclusively to close. A deposit that passed the
		// check is therefore always visible to the workers' final drain.
		submitMu sync.RWMutex
		// submitCh is the unbuffered overflow path when every inbox is
		// full; a send only succeeds into a live worker loop.
		submitCh chan func()
		wg       sync.WaitGroup
		rr       atomic.Uint64
	}

	// worker owns one deque; only its goroutine ever touches it.
	worker struct {
		id     int
		pool   *Pool
		deque  *Deque[*Task]
		inbox  chan func()
		steals chan stealRequest
	}

	// stealRequest asks a victim to detach a batch and send it through
	// reply. The reply handoff is unbuffered so a victim's TrySend fails,
	// rather than leaks the batch, if the thief has already given up.
	stealRequest struct {
		reply *Handoff[*Task]
	}
)

// NewPool initializes a new Pool and starts its workers.
func NewPool(opts ...PoolOption) (*Pool, error) {
	cfg, err := resolvePoolOptions(opts)
	if err != nil {
		return nil, err
	}

	workers := cfg.workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	queueDepth := cfg.queueDepth
	if queueDepth == 0 {
		queueDepth = defaultQueueDepth
	}
	alloc := cfg.alloc
	if alloc == nil {
		alloc = NewTaskAllocator()
	}

	p := &Pool{
		alloc:          alloc,
		logger:         cfg.logger,
		stealBatchSize: cfg.stealBatchSize,
		done:           make(chan struct{}),
		stopped:        make(chan struct{}),
		submitCh:       make(chan func()),
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.workers = make([]*worker, workers)
	for i := range p.workers {
		p.workers[i] = &worker{
			id:     i,
			pool:   p,
			deque:  New[*Task](alloc),
			inbox:  make(chan func(), queueDepth),
			steals: make(chan stealRequest, 1),
		}
	}

	p.wg.Add(len(p.workers))
	for _, w := range p.workers {
		go w.loop()
	}
	go func() {
		p.wg.Wait()
		close(p.done)
	}()

	p.logger.Info().
		Int(`workers`, workers).
		Log(`pool started`)

	return p, nil
}

// Submit schedules fn to run on one of the pool's workers, returning
// [ErrPoolClosed] if the pool has been stopped. Submission order across
// workers is round-robin; execution order within a worker is LIFO.
//
// A nil fn will cause a panic.
func (x *Pool) Submit(fn func()) error {
	if fn == nil {
		panic(`weave: nil task`)
	}
	x.submitMu.RLock()
	select {
	case <-x.stopped:
		x.submitMu.RUnlock()
		return ErrPoolClosed
	case <-x.ctx.Done():
		x.submitMu.RUnlock()
		return ErrPoolClosed
	default:
	}

	i := int(x.rr.Add(1) % uint64(len(x.workers)))

	// Prefer any worker able to accept immediately, starting at the
	// round-robin pick. Deposits happen under the read lock so they
	// cannot race a concurrent stop (see submitMu).
	for j := range x.workers {
		w := x.workers[(i+j)%len(x.workers)]
		select {
		case w.inbox <- fn:
			x.submitMu.RUnlock()
			return nil
		default:
		}
	}
	x.submitMu.RUnlock()

	// Every inbox is full: rendezvous with whichever worker frees up
	// first. The unbuffered send cannot strand fn in a queue nothing will
	// drain; it either reaches a live worker loop or the pool stops.
	select {
	case x.submitCh <- fn:
		return nil
	case <-x.stopped:
		return ErrPoolClosed
	case <-x.ctx.Done():
		return ErrPoolClosed
	}
}

// Shutdown will immediately prevent further tasks via Submit, then wait for
// all already submitted tasks to complete. An error will be returned if ctx
// is canceled prior to this, causing a forced Close.
//
// This method is unsafe to call from within a task.
func (x *Pool) Shutdown(ctx context.Context) (err error) {
	if ctx == nil {
		panic(`weave: nil context`)
	}
	x.stop()

	select {
	case <-ctx.Done():
		if x.ctx.Err() == nil {
			err = ctx.Err() // indicating we forcibly closed
		}
		x.cancel()
		<-x.done
	case <-x.done:
	}

	return err
}

// Close immediately stops all workers, discarding any queued tasks, and
// blocks until the Pool has finished closing. The task currently executing
// on each worker (if any) runs to completion.
//
// This method is unsafe to call from within a task.
func (x *Pool) Close() error {
	x.stop()
	x.cancel()
	<-x.done
	return nil
}

func (x *Pool) stop() {
	x.stopOnce.Do(func() {
		// Exclusive, so the close cannot interleave with a Submit that
		// already passed the stopped check but has yet to deposit.
		x.submitMu.Lock()
		defer x.submitMu.Unlock()
		close(x.stopped)
	})
}

func (x *worker) loop() {
	defer x.pool.wg.Done()
	defer x.deque.Destroy() // discards whatever a forced close left behind

	for {
		// Run local work LIFO, staying responsive to submissions, steal
		// requests, and forced close between tasks. Anything left in the
		// deque on a forced close is discarded by Destroy.
		for {
			select {
			case <-x.pool.ctx.Done():
				return
			default:
			}
			t, ok := x.deque.PopFront()
			if !ok {
				break
			}
			x.execute(t)
			x.poll()
		}

		if x.stealOnce() {
			continue
		}

		select {
		case <-x.pool.ctx.Done():
			return
		case <-x.pool.stopped:
			// No further submissions; whatever is already routed to us
			// still runs before we exit.
			x.drainInbox()
			if x.deque.IsEmpty() {
				return
			}
		case fn := <-x.inbox:
			x.push(fn)
		case fn := <-x.pool.submitCh:
			x.push(fn)
		case req := <-x.steals:
			x.serveSteal(req)
		case <-time.After(parkInterval):
		}
	}
}

// push wraps fn in an allocated node and queues it at the front.
func (x *worker) push(fn func()) {
	t := x.pool.alloc.Allocate()
	t.Run = fn
	x.deque.PushFront(t)
}

// execute runs t, recovering (and logging) any panic, then releases the
// node. Tasks must not kill the worker.
func (x *worker) execute(t *Task) {
	defer func() {
		t.Run = nil
		x.pool.alloc.Free(t)
	}()
	defer func() {
		if r := recover(); r != nil {
			x.pool.logger.Err().
				Int(`worker`, x.id).
				Interface(`recovered`, r).
				Log(`task panic recovered`)
		}
	}()
	t.Run()
}

// poll accepts pending submissions and steal requests without blocking.
func (x *worker) poll() {
	for {
		select {
		case fn := <-x.inbox:
			x.push(fn)
		case fn := <-x.pool.submitCh:
			x.push(fn)
		case req := <-x.steals:
			x.serveSteal(req)
		default:
			return
		}
	}
}

func (x *worker) drainInbox() {
	for {
		select {
		case fn := <-x.inbox:
			x.push(fn)
		default:
			return
		}
	}
}

// serveSteal detaches a batch from this worker's own deque on behalf of a
// thief. If the thief has already given up, the rendezvous send fails and
// the batch is spliced straight back; ownership never leaves this worker
// without a successful hand-off.
func (x *worker) serveSteal(req stealRequest) {
	pending := x.deque.Len()
	if pending == 0 {
		return // thief's wait will lapse
	}
	n := x.pool.stealBatchSize
	if n <= 0 {
		n = (pending + 1) / 2
	}
	b, ok := x.deque.StealBatch(n)
	if !ok {
		return
	}
	if !req.reply.TrySend(b) {
		x.deque.SpliceFront(b)
		return
	}
	x.pool.logger.Debug().
		Int(`worker`, x.id).
		Int(`count`, b.Count).
		Log(`batch stolen`)
}

// stealOnce asks one randomly chosen victim for a batch, splicing it into
// the local deque on success.
func (x *worker) stealOnce() bool {
	peers := x.pool.workers
	if len(peers) < 2 {
		return false
	}
	victim := peers[(x.id+1+rand.Intn(len(peers)-1))%len(peers)]

	reply := NewHandoff[*Task](0)
	select {
	case victim.steals <- stealRequest{reply: reply}:
	default:
		return false // victim already has a pending request
	}

	ctx, cancel := context.WithTimeout(context.Background(), stealWait)
	b, err := reply.Recv(ctx)
	cancel()
	if err != nil {
		// No longer listening; the rendezvous send cannot succeed, and the
		// victim keeps (splices back) the batch.
		reply.Close()
		return false
	}

	x.deque.SpliceFront(b)
	x.pool.logger.Debug().
		Int(`worker`, x.id).
		Int(`victim`, victim.id).
		Int(`count`, b.Count).
		Log(`batch acquired`)
	return true
}

package weave

import (
	"fmt"

	"github.com/joeycumines/logiface"
)

// poolOptions holds configuration options for Pool creation.
type poolOptions struct {
	workers        int
	queueDepth     int
	stealBatchSize int
	logger         *logiface.Logger[logiface.Event]
	alloc          Allocator[*Task]
}

// PoolOption configures a Pool instance.
type PoolOption interface {
	applyPool(*poolOptions) error
}

// poolOptionImpl implements PoolOption.
type poolOptionImpl struct {
	applyPoolFunc func(*poolOptions) error
}

func (x *poolOptionImpl) applyPool(opts *poolOptions) error {
	return x.applyPoolFunc(opts)
}

// WithWorkers sets the number of workers, each owning one [Deque].
// Defaults to [runtime.NumCPU], if 0. Negative values are an error.
func WithWorkers(n int) PoolOption {
	return &poolOptionImpl{func(opts *poolOptions) error {
		if n < 0 {
			return fmt.Errorf(`weave: invalid worker count %d`, n)
		}
		opts.workers = n
		return nil
	}}
}

// WithQueueDepth sets the buffer depth of each worker's submission inbox.
// Defaults to 128, if 0. Negative values are an error.
func WithQueueDepth(n int) PoolOption {
	return &poolOptionImpl{func(opts *poolOptions) error {
		if n < 0 {
			return fmt.Errorf(`weave: invalid queue depth %d`, n)
		}
		opts.queueDepth = n
		return nil
	}}
}

// WithStealBatchSize fixes the number of tasks a victim detaches per steal
// request. Defaults to half of the victim's pending count (minimum 1), if 0.
// This is pool policy layered on top of [Deque.StealBatch], which takes
// whatever count its caller chooses. Negative values are an error.
func WithStealBatchSize(n int) PoolOption {
	return &poolOptionImpl{func(opts *poolOptions) error {
		if n < 0 {
			return fmt.Errorf(`weave: invalid steal batch size %d`, n)
		}
		opts.stealBatchSize = n
		return nil
	}}
}

// WithLogger attaches a structured logger to the pool. Worker lifecycle,
// steal traffic (debug level), and recovered task panics (error level) are
// logged. A nil logger disables logging, which is the default.
func WithLogger(logger *logiface.Logger[logiface.Event]) PoolOption {
	return &poolOptionImpl{func(opts *poolOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithAllocator overrides the allocator shared by the pool's workers.
// Defaults to [NewTaskAllocator]. The allocator must be safe for concurrent
// use: workers free nodes stolen from (allocated by) other workers.
func WithAllocator(alloc Allocator[*Task]) PoolOption {
	return &poolOptionImpl{func(opts *poolOptions) error {
		opts.alloc = alloc
		return nil
	}}
}

// resolvePoolOptions applies PoolOption instances to poolOptions.
func resolvePoolOptions(opts []PoolOption) (*poolOptions, error) {
	cfg := &poolOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue // skip nil options gracefully
		}
		if err := opt.applyPool(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

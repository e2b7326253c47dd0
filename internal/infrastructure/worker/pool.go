// Package worker provides the bounded pool that runs persistence calls.
// Connection pump goroutines never touch the store directly: they submit a
// job here and wait on the result channel, so a slow store stalls one
// connection's handler without tying up connection scheduling.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/churchconnect/realtime/internal/infrastructure/logging"
)

var (
	ErrQueueFull  = errors.New("worker queue full")
	ErrPoolClosed = errors.New("worker pool closed")
)

// jobTimeout caps a single store call. Jobs are detached from the
// submitting connection's cancellation, so they need their own bound.
const jobTimeout = 10 * time.Second

type Pool struct {
	queue  chan func()
	wg     sync.WaitGroup
	logger logging.Logger

	// mu serializes submits against Close: connections may still be
	// draining during shutdown, and a submit racing the channel close
	// must get ErrPoolClosed, not a panic.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func NewPool(size, queueDepth int, logger logging.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if queueDepth <= 0 {
		queueDepth = size
	}

	p := &Pool{
		queue:  make(chan func(), queueDepth),
		logger: logger,
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.run()
	}

	return p
}

func (p *Pool) run() {
	defer p.wg.Done()

	for job := range p.queue {
		p.invoke(job)
	}
}

func (p *Pool) invoke(job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(logging.Internal, logging.Persistence, "worker job panicked", map[logging.ExtraKey]any{
				logging.ErrorMessage: r,
			})
		}
	}()

	job()
}

func (p *Pool) submit(job func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

type result[T any] struct {
	value T
	err   error
}

// Dispatch submits op to the pool and blocks until it completes or ctx is
// done. The op itself runs detached from ctx's cancellation: a store write
// already handed to the pool is allowed to finish even when the submitting
// connection closes mid-flight.
func Dispatch[T any](ctx context.Context, p *Pool, op func(context.Context) (T, error)) (T, error) {
	var zero T

	out := make(chan result[T], 1)
	job := func() {
		opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), jobTimeout)
		defer cancel()

		value, err := op(opCtx)
		out <- result[T]{value: value, err: err}
	}

	if err := p.submit(job); err != nil {
		return zero, err
	}

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-out:
		return r.value, r.err
	}
}

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/alitto/pond/v2"
)

// ErrPoolStopped is returned for work submitted after Shutdown.
var ErrPoolStopped = errors.New("pipeline: worker pool stopped")

// WorkerPool runs CPU-bound stages off the consuming goroutine.
type WorkerPool struct {
	pool    pond.Pool
	workers int
}

// NewWorkerPool creates a pool with the given number of workers (at least one)
func NewWorkerPool(workers int) *WorkerPool {
	workers = max(workers, 1)
	return &WorkerPool{
		pool:    pond.NewPool(workers),
		workers: workers,
	}
}

// Workers returns the pool's concurrency
func (p *WorkerPool) Workers() int {
	return p.workers
}

// QueueLength returns the number of stages waiting for a worker
func (p *WorkerPool) QueueLength() int {
	return int(p.pool.WaitingTasks())
}

// Shutdown waits for running stages and stops the pool
func (p *WorkerPool) Shutdown() {
	p.pool.StopAndWait()
}

// Submit runs fn on a worker and returns its task. The cancellation check
// happens once, when a worker picks the stage up; fn itself runs to completion.
func Submit[T any](ctx context.Context, p *WorkerPool, fn func() (T, error)) *Task[T] {
	t := NewTask[T]()
	var zero T
	pt := p.pool.Submit(func() {
		if ctx.Err() != nil {
			t.Complete(zero, ErrCancelled)
			return
		}
		defer func() {
			if r := recover(); r != nil {
				t.Complete(zero, fmt.Errorf("%w: %v", ErrStagePanic, r))
			}
		}()
		v, err := fn()
		t.Complete(v, err)
	})

	// a stopped pool completes the submission immediately without running it
	select {
	case <-pt.Done():
		if err := pt.Wait(); errors.Is(err, pond.ErrPoolStopped) {
			t.Complete(zero, ErrPoolStopped)
		}
	default:
	}
	return t
}

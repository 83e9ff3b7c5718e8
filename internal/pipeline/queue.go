package pipeline

import "context"

// MainQueue carries work that must run on the consuming goroutine (the one
// owning the render/physics context). Producers Post; the owner drains.
type MainQueue struct {
	jobs chan func()
}

// NewMainQueue creates a queue holding up to size pending jobs
func NewMainQueue(size int) *MainQueue {
	return &MainQueue{jobs: make(chan func(), max(size, 1))}
}

// Post queues fn, blocking while the queue is full. It gives up when ctx is done.
func (q *MainQueue) Post(ctx context.Context, fn func()) error {
	select {
	case q.jobs <- fn:
		return nil
	case <-ctx.Done():
		return ErrCancelled
	}
}

// Drain runs every job queued right now and returns how many ran. It never blocks.
func (q *MainQueue) Drain() int {
	n := 0
	for {
		select {
		case fn := <-q.jobs:
			fn()
			n++
		default:
			return n
		}
	}
}

// RunUntil executes jobs as they arrive until done is closed or ctx ends.
func (q *MainQueue) RunUntil(ctx context.Context, done <-chan struct{}) {
	for {
		select {
		case fn := <-q.jobs:
			fn()
		case <-done:
			q.Drain()
			return
		case <-ctx.Done():
			return
		}
	}
}

// Len returns the number of queued jobs
func (q *MainQueue) Len() int {
	return len(q.jobs)
}

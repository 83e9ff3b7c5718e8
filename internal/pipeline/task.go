package pipeline

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrCancelled is returned by stages abandoned because their build was cancelled.
	ErrCancelled = errors.New("pipeline: cancelled")
	// ErrStagePanic wraps a panic raised inside a stage function.
	ErrStagePanic = errors.New("pipeline: stage panicked")
)

// Task is a unit of work producing a T plus a completion notification.
// Result may be called at any time from any goroutine: it returns the zero
// value until the task completes and the published value afterwards.
type Task[T any] struct {
	mu     sync.RWMutex
	result T
	err    error

	done chan struct{}
	once sync.Once
}

// NewTask returns an incomplete task
func NewTask[T any]() *Task[T] {
	return &Task[T]{done: make(chan struct{})}
}

// Done is closed once the task has a result or an error.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Result returns the published value
func (t *Task[T]) Result() T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.result
}

// Err returns the error the task completed with, if any
func (t *Task[T]) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// Complete publishes the result and signals completion. Only the first call has an effect.
func (t *Task[T]) Complete(v T, err error) {
	t.once.Do(func() {
		t.mu.Lock()
		t.result = v
		t.err = err
		t.mu.Unlock()
		close(t.done)
	})
}

// Wait blocks until the task completes or ctx is done. A task that has
// already completed wins over a cancelled context.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.Result(), t.Err()
	default:
	}
	select {
	case <-t.done:
		return t.Result(), t.Err()
	case <-ctx.Done():
		var zero T
		return zero, ErrCancelled
	}
}

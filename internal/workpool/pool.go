// Package workpool runs CPU-bound jobs (password hashing, token checks) on a
// bounded set of goroutines so they never pile up on the request path.
package workpool

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many jobs run at once.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// New creates a Pool that runs at most size jobs concurrently.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

// Size returns the concurrency limit.
func (p *Pool) Size() int { return p.size }

type result[T any] struct {
	val T
	err error
}

// Do runs fn on the pool and waits for its result. If ctx ends first, Do
// returns ctx.Err(); a job that already started still runs to completion and
// releases its slot, its result is dropped.
func Do[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var zero T
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, fmt.Errorf("workpool: %w", err)
	}

	done := make(chan result[T], 1)
	go func() {
		defer p.sem.Release(1)
		v, err := fn()
		done <- result[T]{val: v, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		return zero, fmt.Errorf("workpool: %w", ctx.Err())
	}
}

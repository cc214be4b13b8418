package media

import (
	"context"

	"golang.org/x/sync/semaphore"

	"connectdj/internal/core"
)

// Pool bounds the number of concurrently running lookup subprocesses. The
// underlying lookup is blocking, so sessions suspend on acquire and resume
// when a worker slot frees up.
type Pool struct {
	sem *semaphore.Weighted
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = core.DefaultMediaWorkers
	}

	return &Pool{sem: semaphore.NewWeighted(int64(workers))}
}

// Do runs fn on a worker slot, waiting for a free slot first. Cancelling the
// context abandons the wait or the result.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		defer p.sem.Release(1)
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

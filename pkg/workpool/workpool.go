// Package workpool runs blocking or CPU-bound work on a bounded set of
// goroutines so callers on the event path only wait, never compute.
//
// Typical usage:
//
//	pool := workpool.New(4)
//	defer pool.Close()
//
//	score, err := workpool.Run(ctx, pool, func() (float64, error) {
//	    return rater.Score(text), nil
//	})
package workpool

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/remeh/sizedwaitgroup"
)

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("workpool: closed")

// Pool limits how many jobs run at once.
type Pool struct {
	swg    sizedwaitgroup.SizedWaitGroup
	closed atomic.Bool
}

// New returns a pool running at most size jobs concurrently.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{swg: sizedwaitgroup.New(size)}
}

// Run executes fn on the pool and waits for its result. If ctx ends first,
// Run returns ctx.Err() and the job finishes in the background.
func Run[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var zero T
	if p.closed.Load() {
		return zero, ErrClosed
	}
	if err := p.swg.AddWithContext(ctx); err != nil {
		return zero, err
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer p.swg.Done()
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close stops accepting work and waits for running jobs.
func (p *Pool) Close() {
	p.closed.Store(true)
	p.swg.Wait()
}

// Package pool runs embarrassingly-parallel, non-mutating CPU-bound work
// (proof generation/verification over N-1 peers) off the caller's
// goroutine. It never crosses a round boundary: every use finishes
// before the round that started it returns control to the engine.
package pool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool bounds the number of concurrent workers used by Parallelize. A
// Pool with Workers <= 0 uses the errgroup default (no limit).
type Pool struct {
	Workers int
}

// New returns a Pool with the given worker limit. 0 means unlimited.
func New(workers int) *Pool {
	return &Pool{Workers: workers}
}

// Parallelize runs fn(i) for i in [0, n) concurrently and returns the
// first error encountered, if any. fn must not mutate shared state other
// than writing to a pre-sized, per-index output slot.
func (p *Pool) Parallelize(n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	g, _ := errgroup.WithContext(context.Background())
	if p != nil && p.Workers > 0 {
		g.SetLimit(p.Workers)
	}
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return fn(i)
		})
	}
	return g.Wait()
}

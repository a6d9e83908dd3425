// Package worker provides a bounded goroutine pool for fanning
// independent per-artifact jobs out during the render phase.
package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// Job is one unit of independent work, typically rendering a single
// artifact. Jobs must not depend on each other's results.
type Job func(ctx context.Context) error

// Pool fans independent jobs out across a bounded set of goroutines.
// Job errors are collected, never short-circuited: one failing job
// does not prevent its siblings from running.
type Pool struct {
	workers int

	// Metrics
	jobsRun    atomic.Uint64
	jobsFailed atomic.Uint64
}

// NewPool creates a pool with the given number of workers. Zero or
// negative means one worker per CPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Workers returns the pool's worker count.
func (p *Pool) Workers() int {
	return p.workers
}

// JobsRun returns the number of jobs executed so far.
func (p *Pool) JobsRun() uint64 {
	return p.jobsRun.Load()
}

// JobsFailed returns the number of jobs that returned an error.
func (p *Pool) JobsFailed() uint64 {
	return p.jobsFailed.Load()
}

// Run executes every job and returns their errors, index-aligned with
// the input. A single worker runs the jobs strictly in order. Once the
// context is cancelled, remaining jobs are not started and report the
// context's error.
func (p *Pool) Run(ctx context.Context, jobs []Job) []error {
	errs := make([]error, len(jobs))
	if len(jobs) == 0 {
		return errs
	}

	if p.workers == 1 {
		for i, job := range jobs {
			errs[i] = p.runOne(ctx, job)
		}
		return errs
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(p.workers)
	for w := 0; w < p.workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				errs[i] = p.runOne(ctx, jobs[i])
			}
		}()
	}
	for i := range jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
	return errs
}

func (p *Pool) runOne(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.jobsRun.Add(1)
	if err := job(ctx); err != nil {
		p.jobsFailed.Add(1)
		return err
	}
	return nil
}

// Package worker provides the concurrency primitives for batch claim
// checking: a bounded worker pool and a per-domain rate limiter.
package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the outcome of a job execution
type Result interface {
	GetError() error
}

// Pool executes jobs on a fixed number of workers. Submission and
// consumption are concurrent: one goroutine submits and calls Close,
// another ranges over Results. The channel buffers hold only a handful
// of jobs, so the backlog never has to fit in the pipeline.
type Pool struct {
	workers   int
	jobQueue  chan Job
	results   chan Result
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a pool with the given worker count (minimum 1).
// Cancelling ctx stops the workers even with submissions pending.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, workers),
		results:  make(chan Result, workers),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the workers. Results closes once all of them exit.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job, blocking until a worker has capacity.
// Submissions after cancellation are dropped.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobQueue <- job:
	}
}

// Close stops accepting jobs. Workers drain the queue, then Results
// closes. Safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobQueue)
	})
}

// Results streams completed jobs. The channel closes after Close (or
// cancellation) once in-flight work finishes.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Shutdown cancels outstanding work immediately
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

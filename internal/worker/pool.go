// Package worker provides the bounded concurrency primitives the refresh
// pipeline runs on: a fixed-size job pool and a per-host rate limiter.
package worker

import (
	"context"
	"sync"
)

// Job is one unit of refresh work. The pipeline wraps each discovered
// candidate (fetch, extract, merge) in a Job so the pool bounds how many
// documents are in flight at once.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a Job produces. Err reports the failure, if any; the
// orchestrator inspects concrete result types for the rest.
type Result interface {
	Err() error
}

// Pool runs submitted jobs on a fixed number of worker goroutines. A
// collector goroutine drains results as workers produce them, so callers
// may submit any number of jobs regardless of channel capacity.
type Pool struct {
	workers   int
	jobs      chan Job
	results   chan Result
	collected []Result
	workerWG  sync.WaitGroup
	collectWG sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a pool with the given worker count. Counts below one
// are clamped to a single worker.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, workers*2),
		results: make(chan Result, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines and the result collector.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.workerWG.Add(1)
		go p.run()
	}
	p.collectWG.Add(1)
	go p.collect()
}

func (p *Pool) run() {
	defer p.workerWG.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
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

// collect drains results for the lifetime of the pool. Only the collector
// reads p.collected until Wait or Shutdown has joined it.
func (p *Pool) collect() {
	defer p.collectWG.Done()
	for result := range p.results {
		p.collected = append(p.collected, result)
	}
}

// Submit enqueues a job. It is a no-op after Shutdown.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobs <- job:
	}
}

// Wait closes the queue, waits for the workers to drain it, and returns
// every result. Call it exactly once, after the last Submit.
func (p *Pool) Wait() []Result {
	close(p.jobs)
	p.workerWG.Wait()
	p.closeResults()
	p.collectWG.Wait()
	return p.collected
}

// Shutdown cancels in-flight jobs and releases the workers.
func (p *Pool) Shutdown() {
	p.cancel()
	p.workerWG.Wait()
	p.closeResults()
	p.collectWG.Wait()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

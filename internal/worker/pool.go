// Package worker provides a small generic pool for running independent
// jobs, used to pre-generate practice sessions across books.
package worker

import "sync"

// Job produces one value. Jobs must be independent of each other; the pool
// gives no ordering guarantee on results.
type Job[T any] func() T

// Result pairs a job's output with the key it was submitted under.
type Result[T any] struct {
	Key    string
	Output T
}

// Pool runs jobs on a fixed number of goroutines and streams results back.
type Pool[T any] struct {
	jobs    chan task[T]
	results chan Result[T]
	wg      sync.WaitGroup
}

type task[T any] struct {
	key string
	fn  Job[T]
}

// New starts a pool with the given worker count and buffer size.
func New[T any](workers, buffer int) *Pool[T] {
	if workers < 1 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	p := &Pool[T]{
		jobs:    make(chan task[T], buffer),
		results: make(chan Result[T], buffer),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.run()
	}
	return p
}

func (p *Pool[T]) run() {
	defer p.wg.Done()
	for t := range p.jobs {
		p.results <- Result[T]{Key: t.key, Output: t.fn()}
	}
}

// Submit enqueues a job. Must not be called after Close.
func (p *Pool[T]) Submit(key string, fn Job[T]) {
	p.jobs <- task[T]{key: key, fn: fn}
}

// Close stops intake and closes the results channel once all submitted
// jobs have finished, so callers can range over Results to drain.
func (p *Pool[T]) Close() {
	close(p.jobs)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// Results is the stream of finished job outputs.
func (p *Pool[T]) Results() <-chan Result[T] {
	return p.results
}

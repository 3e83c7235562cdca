// Copyright 2025 go-binmask Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package workerpool provides a persistent worker pool for running many
// independent mask operations in parallel. Every mask operation is
// single-threaded; the pool only spreads distinct jobs across goroutines.
//
// Usage:
//
//	pool := workerpool.New(0)
//	defer pool.Close()
//
//	err := pool.ForEach(len(masks), func(i int) error {
//	    return masks[i].Turn(1)
//	})
package workerpool

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a set of goroutines started once and reused by every ForEach call.
type Pool struct {
	numWorkers int
	tasks      chan task
	closeOnce  sync.Once

	// mu orders Close against the sends in ForEach.
	mu     sync.RWMutex
	closed bool
}

type task struct {
	run  func()
	done *sync.WaitGroup
}

// New starts a pool with numWorkers goroutines. numWorkers <= 0 means
// GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		tasks:      make(chan task, numWorkers),
	}
	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for t := range p.tasks {
		t.run()
		t.done.Done()
	}
}

// NumWorkers returns the number of goroutines in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close stops the workers once queued work has drained. It is safe to call
// more than once and concurrently with ForEach. A closed pool still accepts
// ForEach and runs it inline.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
	})
}

// ForEach calls fn(i) for every i in [0, n) and blocks until all calls have
// returned. Indices are handed out one at a time through an atomic counter,
// so jobs of uneven cost balance across workers. Every index runs even if an
// earlier one failed; the returned error joins all failures in index order.
func (p *Pool) ForEach(n int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	errs := make([]error, n)

	workers := min(p.numWorkers, n)
	if workers == 1 {
		return runInline(n, fn, errs)
	}
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return runInline(n, fn, errs)
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		p.tasks <- task{
			run: func() {
				for {
					i := int(next.Add(1)) - 1
					if i >= n {
						return
					}
					errs[i] = fn(i)
				}
			},
			done: &wg,
		}
	}
	p.mu.RUnlock()
	wg.Wait()
	return errors.Join(errs...)
}

func runInline(n int, fn func(i int) error, errs []error) error {
	for i := range n {
		errs[i] = fn(i)
	}
	return errors.Join(errs...)
}

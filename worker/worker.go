// Package worker runs submitted tasks on a fixed pool of goroutines with
// sentry panic recovery.
package worker

import (
	"runtime"

	"github.com/getsentry/sentry-go"
)

// Pool is a fixed set of workers draining one task queue.
type Pool struct {
	queue chan func()
}

// NewPool starts size workers; size <= 0 means one per CPU.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{queue: make(chan func(), size)}
	for i := 0; i < size; i++ {
		go p.drain()
	}
	return p
}

func (p *Pool) drain() {
	for f := range p.queue {
		p.exec(f)
	}
}

// exec scopes the recovery to one task; the worker outlives a panic.
func (p *Pool) exec(f func()) {
	defer sentry.Recover()
	f()
}

// Submit queues f for execution. Blocks while the queue is full.
func (p *Pool) Submit(f func()) {
	p.queue <- f
}

// Stop closes the queue; workers exit once it drains. Submit after Stop
// panics.
func (p *Pool) Stop() {
	close(p.queue)
}

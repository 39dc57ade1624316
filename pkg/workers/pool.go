package workers

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned for submissions after Close.
var ErrPoolClosed = errors.New("worker pool closed")

type result struct {
	value any
	err   error
}

// Task is the future for one submitted job.
type Task struct {
	done chan result
}

// Wait blocks until the job finishes or ctx expires. A context expiry
// abandons the result; the job itself still runs to completion on its worker
// and its outcome is discarded.
func (t *Task) Wait(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-t.done:
		return r.value, r.err
	}
}

// Pool runs jobs on a fixed number of workers so slow upstream calls cannot
// starve the loops serving other connections.
type Pool struct {
	jobs chan func()

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = 4
	}
	p := &Pool{jobs: make(chan func(), size*16)}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Submit queues fn and returns its future. The job's context is the one the
// caller passes here; cancelling it makes a well-behaved fn return early.
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) (any, error)) *Task {
	t := &Task{done: make(chan result, 1)}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		t.done <- result{err: ErrPoolClosed}
		return t
	}
	p.jobs <- func() {
		if ctx.Err() != nil {
			t.done <- result{err: ctx.Err()}
			return
		}
		value, err := fn(ctx)
		t.done <- result{value: value, err: err}
	}
	p.mu.Unlock()
	return t
}

// Close stops accepting jobs and waits for in-flight ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

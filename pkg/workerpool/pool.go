// Package workerpool bounds how many queue jobs run at once.
//
//	pool := workerpool.New(4)
//	defer pool.Shutdown()
//	_ = pool.Submit(ctx, func() { sendMail() })
package workerpool

import (
	"context"
	"errors"
	"sync"

	"github.com/shashiranjanraj/uniformhub/pkg/logger"
)

var ErrPoolClosed = errors.New("workerpool: pool is closed")

type Pool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	once    sync.Once
	closeCh chan struct{}
}

// New starts size workers. Submissions beyond size*2 block.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		tasks:   make(chan func(), size*2),
		closeCh: make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit blocks until a worker slot is free, ctx ends, or the pool closes.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closeCh:
		return ErrPoolClosed
	}
}

// Shutdown stops accepting tasks and waits for in-flight ones. Safe to call
// more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		// wake blocked submitters before taking the write lock
		close(p.closeCh)
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		safeRun(task)
	}
}

func safeRun(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "panic", r)
		}
	}()
	task()
}

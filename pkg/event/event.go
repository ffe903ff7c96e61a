// Package event is an in-process publish/subscribe bus. Services fire
// domain events (user.approved, user.rejected, user.pending) and listeners
// registered at boot react to them, usually by dispatching a queue job.
package event

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/uniformhub/pkg/logger"
)

// Handler receives an event payload. A returned error is logged, never
// propagated to the firer.
type Handler func(ctx context.Context, payload any) error

type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
}

func New() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(event string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], h)
}

func (b *Bus) listeners(event string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, len(b.handlers[event]))
	copy(hs, b.handlers[event])
	return hs
}

// Fire runs every listener in registration order on the calling goroutine.
func (b *Bus) Fire(ctx context.Context, event string, payload any) {
	for _, h := range b.listeners(event) {
		if err := h(ctx, payload); err != nil {
			logger.WithCtx(ctx).Error("event: listener failed", "event", event, "error", err)
		}
	}
}

// FireAsync runs listeners concurrently and returns at once. The request
// context is detached so listeners outlive the HTTP handler.
func (b *Bus) FireAsync(ctx context.Context, event string, payload any) {
	detached := context.WithoutCancel(ctx)
	for _, h := range b.listeners(event) {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			if err := h(detached, payload); err != nil {
				logger.WithCtx(detached).Error("event: listener failed", "event", event, "error", err)
			}
		}(h)
	}
}

// Wait blocks until every FireAsync listener has returned.
func (b *Bus) Wait() { b.wg.Wait() }

// Flush removes all listeners.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}

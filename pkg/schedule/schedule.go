// Package schedule runs periodic maintenance tasks such as pruning expired
// sessions and old email logs.
//
//	s := schedule.New()
//	s.Hourly().Name("sessions:prune").WithoutOverlapping().Run(pruneSessions)
//	s.Daily().Name("email-logs:prune").Run(pruneEmailLogs)
//	s.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/uniformhub/pkg/logger"
)

type Task func(ctx context.Context) error

type entry struct {
	id        string
	interval  time.Duration
	task      Task
	noOverlap bool

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	tick    time.Duration
	wg      sync.WaitGroup
}

func New() *Scheduler {
	return &Scheduler{tick: time.Second}
}

// Builder configures one entry before Run registers it.
type Builder struct {
	s *Scheduler
	e *entry
}

func (s *Scheduler) Every(d time.Duration) *Builder {
	return &Builder{s: s, e: &entry{interval: d}}
}

func (s *Scheduler) EveryMinute() *Builder { return s.Every(time.Minute) }
func (s *Scheduler) Hourly() *Builder      { return s.Every(time.Hour) }
func (s *Scheduler) Daily() *Builder       { return s.Every(24 * time.Hour) }

func (b *Builder) Name(id string) *Builder {
	b.e.id = id
	return b
}

// WithoutOverlapping skips a tick while the previous run is still going.
func (b *Builder) WithoutOverlapping() *Builder {
	b.e.noOverlap = true
	return b
}

func (b *Builder) Run(fn Task) {
	b.e.task = fn
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.e.id == "" {
		b.e.id = fmt.Sprintf("task-%d", len(b.s.entries)+1)
	}
	b.s.entries = append(b.s.entries, b.e)
}

// Start dispatches due tasks every tick until ctx is cancelled. Every task
// runs once immediately.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		logger.Info("schedule: started", "tasks", len(s.snapshot()))

		s.dispatchDue(ctx, time.Now())
		for {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				logger.Info("schedule: stopped")
				return
			case now := <-ticker.C:
				s.dispatchDue(ctx, now)
			}
		}
	}()
}

// RunAll executes every registered task once and waits for them. Used by
// `uniformhub schedule:run` from an external cron.
func (s *Scheduler) RunAll(ctx context.Context) {
	for _, e := range s.snapshot() {
		s.dispatch(ctx, e, time.Now())
	}
	s.wg.Wait()
}

// List returns "id  [interval]" lines for the CLI.
func (s *Scheduler) List() []string {
	entries := s.snapshot()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s  [%s]", e.id, e.interval))
	}
	return out
}

func (s *Scheduler) snapshot() []*entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entry(nil), s.entries...)
}

func (s *Scheduler) dispatchDue(ctx context.Context, now time.Time) {
	for _, e := range s.snapshot() {
		e.mu.Lock()
		due := e.lastRun.IsZero() || now.Sub(e.lastRun) >= e.interval
		e.mu.Unlock()
		if due {
			s.dispatch(ctx, e, now)
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: skipping overlapping task", "id", e.id)
		return
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", e.id, "panic", r)
			}
		}()

		start := time.Now()
		if err := e.task(ctx); err != nil {
			logger.Error("schedule: task failed", "id", e.id, "error", err)
			return
		}
		logger.Info("schedule: task done", "id", e.id, "duration", time.Since(start))
	}()
}

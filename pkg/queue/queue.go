// Package queue runs background jobs (outgoing email) with retries.
//
//	q := queue.New(queue.NewMemoryDriver())
//	q.Register("email.send", func() queue.Job { return &SendEmailJob{} })
//	_ = q.Dispatch(ctx, &SendEmailJob{To: "a@b.io", Template: "user-approved"})
//	go q.Work(ctx, 4)
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/pkg/logger"
	"github.com/shashiranjanraj/uniformhub/pkg/metrics"
	"github.com/shashiranjanraj/uniformhub/pkg/workerpool"
)

// Job is one unit of background work. Jobs are JSON encoded on dispatch and
// decoded into a fresh value from the registered factory before Handle.
type Job interface {
	Handle(ctx context.Context) error
}

// Named lets a job pick its registry name; otherwise the Go type name is
// used.
type Named interface {
	JobName() string
}

// Driver stores encoded jobs between dispatch and execution.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	// Pop blocks until a payload is ready or ctx ends. A nil payload with
	// nil error means "nothing yet, poll again".
	Pop(ctx context.Context) ([]byte, error)
}

// FailedJob is kept in memory for jobs that exhausted their retries.
type FailedJob struct {
	Name     string
	Payload  []byte
	Err      error
	FailedAt time.Time
	Attempts int
}

type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	failed   []FailedJob
	db       *gorm.DB
	sync     bool

	MaxAttempts int
	Backoff     time.Duration
}

func New(d Driver) *Manager {
	return &Manager{
		driver:      d,
		registry:    map[string]func() Job{},
		MaxAttempts: 3,
		Backoff:     time.Second,
	}
}

// NewSync returns a manager that runs jobs inline on Dispatch. The CLI and
// tests use it where no worker is running.
func NewSync() *Manager {
	m := New(nil)
	m.sync = true
	return m
}

// UseDB persists exhausted jobs to the failed_jobs table.
func (m *Manager) UseDB(db *gorm.DB) {
	m.mu.Lock()
	m.db = db
	m.mu.Unlock()
}

func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	m.registry[name] = factory
	m.mu.Unlock()
}

type envelope struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

func jobName(j Job) string {
	if n, ok := j.(Named); ok {
		return n.JobName()
	}
	return fmt.Sprintf("%T", j)
}

// Dispatch queues job, or runs it immediately on a sync manager.
func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	name := jobName(job)
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", name, err)
	}

	if m.sync {
		m.run(ctx, name, payload, job)
		return nil
	}

	env, err := json.Marshal(envelope{Name: name, Payload: payload})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}
	return m.driver.Push(ctx, env)
}

// Work pops jobs and executes them on a pool of concurrency goroutines
// until ctx is cancelled, then waits for in-flight jobs.
func (m *Manager) Work(ctx context.Context, concurrency int) {
	if m.sync {
		return
	}
	pool := workerpool.New(concurrency)
	defer pool.Shutdown()

	logger.Info("queue: workers started", "count", concurrency)
	for {
		raw, err := m.driver.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("queue: workers stopping")
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		if raw == nil {
			continue
		}
		if err := pool.Submit(ctx, func() { m.process(ctx, raw) }); err != nil {
			if !errors.Is(err, workerpool.ErrPoolClosed) && ctx.Err() == nil {
				logger.Warn("queue: submit failed", "error", err)
			}
			return
		}
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Name]
	m.mu.RUnlock()
	if !ok {
		logger.Warn("queue: unregistered job", "name", env.Name)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "name", env.Name, "error", err)
		return
	}
	m.run(ctx, env.Name, env.Payload, job)
}

func (m *Manager) run(ctx context.Context, name string, payload []byte, job Job) {
	start := time.Now()
	attempts := m.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = job.Handle(ctx); lastErr == nil {
			metrics.RecordQueueJob(name, "success", start)
			return
		}
		if attempt == attempts {
			break
		}
		logger.Warn("queue: job failed, retrying", "name", name, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(time.Duration(attempt) * m.Backoff):
		case <-ctx.Done():
			lastErr = ctx.Err()
			attempt = attempts
		}
	}

	metrics.RecordQueueJob(name, "failed", start)
	logger.Error("queue: job exhausted retries", "name", name, "error", lastErr)
	m.recordFailure(name, payload, lastErr, attempts)
}

// Failed returns a snapshot of jobs that exhausted their retries.
func (m *Manager) Failed() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]FailedJob(nil), m.failed...)
}

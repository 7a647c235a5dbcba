// Package queue runs background jobs outside the request path.
//
// Jobs are JSON-encoded into an envelope and pushed onto a Driver (memory or
// Redis). Workers decode them through a registry of factories, so a job's
// dependencies are wired when it is registered, not when it is queued:
//
//	q := queue.New(queue.NewMemoryDriver())
//	q.Register(jobs.ClearCartName, func() queue.Job { return &jobs.ClearCart{Carts: store.Carts} })
//	go q.Run(ctx, 2)
//
//	q.Dispatch(ctx, &jobs.ClearCart{UserID: "u1"})
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Job is the interface every queued job must satisfy.
type Job interface {
	// Name is the registry key the worker decodes the job by.
	Name() string
	// Handle executes the job. A non-nil error triggers a retry.
	Handle(ctx context.Context) error
}

// FailedJob is a job that exhausted its retries.
type FailedJob struct {
	Type     string
	Payload  json.RawMessage
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver is the queue storage backend.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	// Pop blocks until a payload is ready. A nil payload with a nil error
	// means the wait timed out.
	Pop(ctx context.Context) ([]byte, error)
}

// DelayedDriver can hold a payload back until delay has passed.
type DelayedDriver interface {
	PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxRetry sets how many times a job runs before it is recorded as failed.
func WithMaxRetry(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxRetry = n
		}
	}
}

// WithBackoff sets the pause before retry attempt n (1-based).
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(m *Manager) { m.backoff = fn }
}

// WithFailedJobsDB also records failed jobs in the failed_jobs table.
func WithFailedJobsDB(db *gorm.DB) Option {
	return func(m *Manager) { m.failedDB = db }
}

// Manager owns a driver, the job registry and the failed-job log.
type Manager struct {
	driver   Driver
	maxRetry int
	backoff  func(attempt int) time.Duration
	failedDB *gorm.DB

	mu       sync.RWMutex
	registry map[string]func() Job
	failed   []FailedJob
}

// New returns a Manager over driver.
func New(driver Driver, opts ...Option) *Manager {
	m := &Manager{
		driver:   driver,
		maxRetry: 3,
		backoff:  func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
		registry: map[string]func() Job{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register makes a job type decodable by name.
func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[name] = factory
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encode(job Job) ([]byte, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal job %s: %w", job.Name(), err)
	}
	env, err := json.Marshal(envelope{Type: job.Name(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("queue: marshal envelope: %w", err)
	}
	return env, nil
}

// Dispatch pushes job onto the queue.
func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	env, err := encode(job)
	if err != nil {
		return err
	}
	return m.driver.Push(ctx, env)
}

// DispatchAfter queues job once delay has passed. Drivers without delayed
// support get a timer in this process.
func (m *Manager) DispatchAfter(ctx context.Context, job Job, delay time.Duration) error {
	env, err := encode(job)
	if err != nil {
		return err
	}
	if d, ok := m.driver.(DelayedDriver); ok {
		return d.PushDelayed(ctx, env, delay)
	}

	detached := context.WithoutCancel(ctx)
	time.AfterFunc(delay, func() {
		if err := m.driver.Push(detached, env); err != nil {
			logger.Error("queue: delayed dispatch failed", "type", job.Name(), "error", err)
		}
	})
	return nil
}

// promoter is implemented by drivers that need a background loop.
type promoter interface {
	Promote(ctx context.Context)
}

// Run processes jobs with n workers until ctx is cancelled, then waits for
// the workers to return.
func (m *Manager) Run(ctx context.Context, n int) {
	if n <= 0 {
		n = 1
	}

	var wg sync.WaitGroup
	if p, ok := m.driver.(promoter); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Promote(ctx)
		}()
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.work(ctx)
		}()
	}
	logger.Info("queue: workers started", "count", n)

	wg.Wait()
	logger.Info("queue: workers stopped")
}

func (m *Manager) work(ctx context.Context) {
	for ctx.Err() == nil {
		raw, err := m.driver.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if raw == nil {
			continue
		}
		m.process(ctx, raw)
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()
	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}

	m.runWithRetry(ctx, job, env)
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, env envelope) {
	var lastErr error
	for attempt := 1; attempt <= m.maxRetry; attempt++ {
		start := time.Now()
		err := job.Handle(ctx)
		if err == nil {
			metrics.RecordQueueJob(env.Type, "processed", start)
			logger.Info("queue: job processed", "type", env.Type, "attempt", attempt)
			return
		}

		lastErr = err
		metrics.RecordQueueJob(env.Type, "retried", start)
		logger.Warn("queue: job failed", "type", env.Type, "attempt", attempt, "error", err)
		if attempt < m.maxRetry && !sleep(ctx, m.backoff(attempt)) {
			break
		}
	}

	metrics.RecordQueueJob(env.Type, "failed", time.Now())
	m.persistFailed(ctx, env, lastErr, m.maxRetry)
	logger.Error("queue: job exhausted retries", "type", env.Type, "error", lastErr)
}

// FailedJobs returns a snapshot of jobs that exhausted their retries.
func (m *Manager) FailedJobs() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]FailedJob(nil), m.failed...)
}

// sleep waits for d or until ctx is done; it reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Package health aggregates dependency checks for probes.
//
//	checks := health.New(2 * time.Second)
//	checks.Add("store", store.Ping)
//	checks.Add("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
//
//	r.Get("/healthz", "health", checks.Handler())
//	r.Get("/livez", "live", health.Live)
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// CheckFunc returns nil when the dependency is usable.
type CheckFunc func(ctx context.Context) error

// Result is one check's outcome.
type Result struct {
	Name     string `json:"name"`
	Healthy  bool   `json:"healthy"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

// Report is the aggregated outcome.
type Report struct {
	Healthy bool     `json:"healthy"`
	Checks  []Result `json:"checks"`
}

type Checks struct {
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// New returns an empty set. Each check runs under timeout.
func New(timeout time.Duration) *Checks {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checks{timeout: timeout, checks: make(map[string]CheckFunc)}
}

func (c *Checks) Add(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = fn
}

// Run executes every check concurrently.
func (c *Checks) Run(ctx context.Context) Report {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for n := range c.checks {
		names = append(names, n)
	}
	c.mu.RUnlock()
	sort.Strings(names)

	results := make([]Result, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		c.mu.RLock()
		fn := c.checks[name]
		c.mu.RUnlock()

		wg.Add(1)
		go func(i int, name string, fn CheckFunc) {
			defer wg.Done()
			results[i] = c.run(ctx, name, fn)
		}(i, name, fn)
	}
	wg.Wait()

	report := Report{Healthy: true, Checks: results}
	for _, r := range results {
		if !r.Healthy {
			report.Healthy = false
		}
	}
	return report
}

func (c *Checks) run(ctx context.Context, name string, fn CheckFunc) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	r := Result{Name: name, Healthy: err == nil, Duration: time.Since(start).String()}
	if err != nil {
		r.Error = err.Error()
		logger.WithCtx(ctx).Warn("health: check failed", "check", name, "error", err)
	}
	return r
}

// Handler reports 200 when every check passes and 503 otherwise.
func (c *Checks) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Run(r.Context())
		status := http.StatusOK
		if !report.Healthy {
			status = http.StatusServiceUnavailable
		}
		response.JSON(w, status, report)
	}
}

// Live answers liveness probes without touching dependencies.
func Live(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

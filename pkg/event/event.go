// Package event dispatches in-process domain events to registered listeners.
//
// Listeners run on a bounded worker pool when fired asynchronously, so the
// code that raised the event (the payment webhook) does not wait on them.
//
//	d := event.NewDispatcher(4)
//	d.Listen(events.OrderMaterialized, "publish", publishOrder)
//	d.FireAsync(ctx, events.OrderMaterialized, order)
package event

import (
	"context"
	"errors"
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
)

// Listener handles one event payload.
type Listener func(ctx context.Context, payload any) error

type named struct {
	name string
	fn   Listener
}

// Dispatcher routes events by name.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]named
	pool      *workerpool.Pool
}

// NewDispatcher returns a Dispatcher whose async listeners share a pool of
// the given size.
func NewDispatcher(workers int) *Dispatcher {
	return &Dispatcher{
		listeners: make(map[string][]named),
		pool:      workerpool.New(workers),
	}
}

// Listen registers fn for event. name identifies the listener in logs.
func (d *Dispatcher) Listen(event, name string, fn Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[event] = append(d.listeners[event], named{name: name, fn: fn})
}

func (d *Dispatcher) snapshot(event string) []named {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]named(nil), d.listeners[event]...)
}

// Fire runs every listener in registration order and joins their errors.
func (d *Dispatcher) Fire(ctx context.Context, event string, payload any) error {
	var errs []error
	for _, l := range d.snapshot(event) {
		if err := l.fn(ctx, payload); err != nil {
			logger.WithCtx(ctx).Error("event: listener failed", "event", event, "listener", l.name, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FireAsync schedules every listener on the pool and returns at once.
// Listeners get a context that keeps ctx's values but not its cancellation.
// Failures are logged only.
func (d *Dispatcher) FireAsync(ctx context.Context, event string, payload any) {
	detached := context.WithoutCancel(ctx)
	log := logger.WithCtx(ctx)

	for _, l := range d.snapshot(event) {
		l := l
		task := func() {
			if err := l.fn(detached, payload); err != nil {
				log.Error("event: listener failed", "event", event, "listener", l.name, "error", err)
			}
		}
		if err := d.pool.Submit(task); err != nil {
			if errors.Is(err, workerpool.ErrPoolClosed) {
				log.Warn("event: dispatcher closed, listener skipped", "event", event, "listener", l.name)
				continue
			}
			// Saturated: run it outside the pool rather than lose it.
			log.Warn("event: pool full, running listener unpooled", "event", event, "listener", l.name)
			go task()
		}
	}
}

// Close waits for scheduled listeners and stops the pool.
func (d *Dispatcher) Close() {
	d.pool.Shutdown()
}

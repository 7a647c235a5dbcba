package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryDriver keeps values in process memory with lazy expiry.
type MemoryDriver struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{items: make(map[string]memoryItem), now: time.Now}
}

func (d *MemoryDriver) Name() string { return "memory" }

func (d *MemoryDriver) Get(_ context.Context, key string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	it, ok := d.items[key]
	if !ok {
		return nil, ErrMiss
	}
	if !it.expiresAt.IsZero() && d.now().After(it.expiresAt) {
		delete(d.items, key)
		return nil, ErrMiss
	}
	return append([]byte(nil), it.value...), nil
}

func (d *MemoryDriver) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	it := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expiresAt = d.now().Add(ttl)
	}
	d.items[key] = it
	return nil
}

func (d *MemoryDriver) Del(_ context.Context, keys ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range keys {
		delete(d.items, k)
	}
	return nil
}

func (d *MemoryDriver) Incr(_ context.Context, key string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var n int64
	if it, ok := d.items[key]; ok {
		n, _ = strconv.ParseInt(string(it.value), 10, 64)
	}
	n++
	d.items[key] = memoryItem{value: []byte(strconv.FormatInt(n, 10))}
	return n, nil
}

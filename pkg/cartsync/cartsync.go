// Package cartsync keeps a client-side cart in step with the server copy.
//
// Every mutation is applied locally first, then the whole item list is sent
// to replace the server cart. When the server refuses, the local cart goes
// back to the snapshot taken before the mutation and the error is returned.
// There is no merging between devices; the last replace wins.
//
//	cart := cartsync.New(cartsync.NewHTTPRemote(client))
//	if err := cart.Load(ctx); err != nil { ... }
//	err := cart.Do(ctx, cartsync.Add{Item: line})
package cartsync

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/collection"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Remote is the server side of the cart.
type Remote interface {
	Fetch(ctx context.Context) ([]models.CartItem, error)
	Replace(ctx context.Context, items []models.CartItem) ([]models.CartItem, error)
}

// Cart is the local view. It is safe for concurrent use; mutations are
// applied one at a time.
type Cart struct {
	remote Remote

	// sync serializes Do so a rollback never clobbers a later mutation.
	sync sync.Mutex

	mu    sync.RWMutex
	items []models.CartItem
}

func New(remote Remote) *Cart {
	return &Cart{remote: remote, items: []models.CartItem{}}
}

// Items returns a copy of the current lines.
func (c *Cart) Items() []models.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return collection.Clone(c.items)
}

// Count is the total quantity across lines.
func (c *Cart) Count() int {
	return collection.Reduce(c.Items(), 0, func(n int, it models.CartItem) int { return n + it.Quantity })
}

// Total is the sum of price times quantity.
func (c *Cart) Total() decimal.Decimal {
	return collection.Reduce(c.Items(), decimal.Zero, func(sum decimal.Decimal, it models.CartItem) decimal.Decimal {
		return sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	})
}

// Load replaces the local cart with the server copy.
func (c *Cart) Load(ctx context.Context) error {
	c.sync.Lock()
	defer c.sync.Unlock()

	items, err := c.remote.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("cartsync: load: %w", err)
	}
	c.set(items)
	return nil
}

func (c *Cart) set(items []models.CartItem) {
	if items == nil {
		items = []models.CartItem{}
	}
	c.mu.Lock()
	c.items = collection.Clone(items)
	c.mu.Unlock()
}

// Do applies cmd locally and pushes the result to the server.
func (c *Cart) Do(ctx context.Context, cmd Command) error {
	c.sync.Lock()
	defer c.sync.Unlock()

	m := Mutation{cart: c, cmd: cmd}
	m.Snapshot()
	next := m.Apply()

	saved, err := c.remote.Replace(ctx, next)
	if err != nil {
		m.Restore()
		logger.WithCtx(ctx).Warn("cartsync: server rejected cart, rolled back", "command", cmd.Name(), "error", err)
		return fmt.Errorf("cartsync: %s: %w", cmd.Name(), err)
	}
	// The server may assign ids, so its copy becomes the local one.
	if saved != nil {
		c.set(saved)
	}
	return nil
}

// Mutation is one command in flight together with the state it replaced.
type Mutation struct {
	cart     *Cart
	cmd      Command
	snapshot []models.CartItem
}

// Snapshot records the cart as it is before the command.
func (m *Mutation) Snapshot() {
	m.snapshot = m.cart.Items()
}

// Apply runs the command against a copy of the snapshot, stores the result
// as the local cart and returns it.
func (m *Mutation) Apply() []models.CartItem {
	next := m.cmd.Apply(collection.Clone(m.snapshot))
	m.cart.set(next)
	return m.cart.Items()
}

// Restore puts the snapshot back.
func (m *Mutation) Restore() {
	m.cart.set(m.snapshot)
}

// Package memory implements the repositories in process memory. Each
// repository guards its map with a mutex, which also makes Order.CreateOnce
// atomic per session id.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/collection"
)

// NewStore returns an empty in-memory store.
func NewStore() *repositories.Store {
	return repositories.NewStore(NewProducts(), NewUsers(), NewCarts(), NewOrders(), nil, nil)
}

var now = func() time.Time { return time.Now().UTC() }

// ─── Products ─────────────────────────────────────────────────────────────────

type Products struct {
	mu    sync.RWMutex
	items map[string]models.Product
	order []string
}

func NewProducts() *Products {
	return &Products{items: make(map[string]models.Product)}
}

func (r *Products) all() []models.Product {
	out := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out
}

func (r *Products) List(_ context.Context, category string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if category == "" {
		return r.all(), nil
	}
	return collection.Filter(r.all(), func(p models.Product) bool { return p.Category == category }), nil
}

// Search matches every whitespace-separated term against name, description
// and category, case-insensitively. Any matching term is enough.
func (r *Products) Search(_ context.Context, q string) ([]models.Product, error) {
	terms := strings.Fields(strings.ToLower(q))

	r.mu.RLock()
	defer r.mu.RUnlock()

	return collection.Filter(r.all(), func(p models.Product) bool {
		hay := strings.ToLower(p.Name + " " + p.Description + " " + p.Category)
		for _, t := range terms {
			if strings.Contains(hay, t) {
				return true
			}
		}
		return false
	}), nil
}

func (r *Products) Find(_ context.Context, id string) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return models.Product{}, repositories.ErrNotFound
	}
	return p, nil
}

func (r *Products) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := r.items[p.ID]; exists {
		return repositories.ErrDuplicate
	}
	p.CreatedAt, p.UpdatedAt = now(), now()
	r.items[p.ID] = *p
	r.order = append(r.order, p.ID)
	return nil
}

func (r *Products) Update(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[p.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = now()
	r.items[p.ID] = *p
	return nil
}

func (r *Products) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.items, id)
	r.order = collection.Reject(r.order, func(s string) bool { return s == id })
	return nil
}

func (r *Products) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}

// ─── Users ────────────────────────────────────────────────────────────────────

type Users struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

func NewUsers() *Users {
	return &Users{byID: make(map[string]models.User), byEmail: make(map[string]string)}
}

func (r *Users) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *Users) FindByID(_ context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return u, nil
}

func (r *Users) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, taken := r.byEmail[key]; taken {
		return repositories.ErrDuplicate
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt, u.UpdatedAt = now(), now()
	r.byID[u.ID] = *u
	r.byEmail[key] = u.ID
	return nil
}

func (r *Users) UpdateAddress(_ context.Context, id string, addr models.Address) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	u.Address = &addr
	u.UpdatedAt = now()
	r.byID[id] = u
	return u, nil
}

func (r *Users) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byEmail, strings.ToLower(u.Email))
	return nil
}

func (r *Users) All(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	return collection.SortBy(out, func(a, b models.User) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

func (r *Users) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

// ─── Carts ────────────────────────────────────────────────────────────────────

type Carts struct {
	mu    sync.RWMutex
	carts map[string]models.Cart
}

func NewCarts() *Carts {
	return &Carts{carts: make(map[string]models.Cart)}
}

func (r *Carts) Get(_ context.Context, userID string) (models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[userID]
	if !ok {
		return models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	c.Items = collection.Clone(c.Items)
	return c, nil
}

func (r *Carts) Replace(_ context.Context, userID string, items []models.CartItem) (models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := models.Cart{UserID: userID, Items: collection.Clone(items), UpdatedAt: now()}
	r.carts[userID] = c
	c.Items = collection.Clone(c.Items)
	return c, nil
}

func (r *Carts) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

// ─── Orders ───────────────────────────────────────────────────────────────────

type Orders struct {
	mu        sync.RWMutex
	bySession map[string]models.Order
}

func NewOrders() *Orders {
	return &Orders{bySession: make(map[string]models.Order)}
}

func (r *Orders) CreateOnce(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySession[o.SessionID]; exists {
		return repositories.ErrDuplicate
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now()
	}
	o.UpdatedAt = o.CreatedAt
	r.bySession[o.SessionID] = *o
	return nil
}

func (r *Orders) FindBySession(_ context.Context, sessionID string) (models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.bySession[sessionID]
	if !ok {
		return models.Order{}, repositories.ErrNotFound
	}
	return o, nil
}

func (r *Orders) newestFirst(keep func(models.Order) bool) []models.Order {
	out := make([]models.Order, 0)
	for _, o := range r.bySession {
		if keep(o) {
			out = append(out, o)
		}
	}
	return collection.SortBy(out, func(a, b models.Order) bool { return a.CreatedAt.After(b.CreatedAt) })
}

func (r *Orders) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.newestFirst(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *Orders) All(_ context.Context) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.newestFirst(func(models.Order) bool { return true }), nil
}

func (r *Orders) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for sid, o := range r.bySession {
		if o.UserID == userID {
			delete(r.bySession, sid)
			n++
		}
	}
	return n, nil
}

func (r *Orders) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.bySession)), nil
}

func (r *Orders) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	all, _ := r.All(ctx)
	return repositories.SumTotals(all), nil
}

func (r *Orders) MonthlyRevenue(ctx context.Context) ([]models.MonthlyRevenue, error) {
	all, _ := r.All(ctx)
	return repositories.RollupMonthly(all), nil
}

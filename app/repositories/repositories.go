// Package repositories defines the storage contract the services depend on.
// Three implementations live in sub-packages: mongo (primary), sql (gorm) and
// memory (tests and local development).
package repositories

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
)

var (
	// ErrNotFound is returned when a lookup by id matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique key.
	ErrDuplicate = errors.New("duplicate key")
	// ErrInvalidID is returned when an id cannot be parsed by the store.
	ErrInvalidID = errors.New("invalid id")
)

// ProductRepository persists catalog records.
type ProductRepository interface {
	List(ctx context.Context, category string) ([]models.Product, error)
	Search(ctx context.Context, q string) ([]models.Product, error)
	Find(ctx context.Context, id string) (models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// UserRepository persists identity records. Email is unique.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdateAddress(ctx context.Context, id string, addr models.Address) (models.User, error)
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

// CartRepository stores one cart per user. Replace is an atomic upsert.
type CartRepository interface {
	Get(ctx context.Context, userID string) (models.Cart, error)
	Replace(ctx context.Context, userID string, items []models.CartItem) (models.Cart, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// OrderRepository stores orders. CreateOnce must return ErrDuplicate when an
// order for the same session id already exists, and must decide that
// atomically in the store rather than by a prior read.
type OrderRepository interface {
	CreateOnce(ctx context.Context, o *models.Order) error
	FindBySession(ctx context.Context, sessionID string) (models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	All(ctx context.Context) ([]models.Order, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	Count(ctx context.Context) (int64, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	MonthlyRevenue(ctx context.Context) ([]models.MonthlyRevenue, error)
}

// Store bundles the repositories behind one connection lifecycle.
type Store struct {
	Products ProductRepository
	Users    UserRepository
	Carts    CartRepository
	Orders   OrderRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// NewStore wires repositories with the backend's ping and close hooks.
// Either hook may be nil.
func NewStore(p ProductRepository, u UserRepository, c CartRepository, o OrderRepository,
	ping, closeFn func(ctx context.Context) error) *Store {
	return &Store{Products: p, Users: u, Carts: c, Orders: o, ping: ping, close: closeFn}
}

// Ping checks the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

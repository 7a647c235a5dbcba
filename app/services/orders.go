package services

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

// OrderService reads orders. Orders are written only by the Materializer.
type OrderService struct {
	orders repositories.OrderRepository
}

func NewOrderService(orders repositories.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// ForUser returns the user's orders, newest first.
func (s *OrderService) ForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// BySession returns the order created for a checkout session, for the
// success page.
func (s *OrderService) BySession(ctx context.Context, userID, sessionID string) (models.Order, error) {
	o, err := s.orders.FindBySession(ctx, sessionID)
	if err != nil {
		return models.Order{}, err
	}
	if o.UserID != userID {
		return models.Order{}, ErrNotFound
	}
	return o, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers    int64                   `json:"totalUsers"`
	TotalProducts int64                   `json:"totalProducts"`
	TotalOrders   int64                   `json:"totalOrders"`
	Revenue       decimal.Decimal         `json:"revenue"`
	RevenueData   []models.MonthlyRevenue `json:"revenueData"`
}

type AdminService struct {
	store *repositories.Store
}

func NewAdminService(store *repositories.Store) *AdminService {
	return &AdminService{store: store}
}

func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error

	if st.TotalUsers, err = s.store.Users.Count(ctx); err != nil {
		return Stats{}, fmt.Errorf("count users: %w", err)
	}
	if st.TotalProducts, err = s.store.Products.Count(ctx); err != nil {
		return Stats{}, fmt.Errorf("count products: %w", err)
	}
	if st.TotalOrders, err = s.store.Orders.Count(ctx); err != nil {
		return Stats{}, fmt.Errorf("count orders: %w", err)
	}
	if st.Revenue, err = s.store.Orders.TotalRevenue(ctx); err != nil {
		return Stats{}, fmt.Errorf("total revenue: %w", err)
	}
	if st.RevenueData, err = s.store.Orders.MonthlyRevenue(ctx); err != nil {
		return Stats{}, fmt.Errorf("monthly revenue: %w", err)
	}
	if st.RevenueData == nil {
		st.RevenueData = []models.MonthlyRevenue{}
	}
	return st, nil
}

func (s *AdminService) Users(ctx context.Context) ([]models.User, error) {
	return s.store.Users.All(ctx)
}

func (s *AdminService) Orders(ctx context.Context) ([]models.Order, error) {
	return s.store.Orders.All(ctx)
}

// DeleteUser removes a user with their cart and orders. An admin cannot
// delete their own account.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return Invalid("id", "You cannot delete your own account.")
	}
	if _, err := s.store.Users.FindByID(ctx, userID); err != nil {
		return err
	}

	if err := s.store.Carts.DeleteByUser(ctx, userID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("delete cart: %w", err)
	}
	n, err := s.store.Orders.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete orders: %w", err)
	}
	if err := s.store.Users.Delete(ctx, userID); err != nil {
		return err
	}

	logger.WithCtx(ctx).Info("admin: user deleted", "user_id", userID, "orders_deleted", n, "actor_id", actorID)
	return nil
}

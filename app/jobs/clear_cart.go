// Package jobs holds the background jobs the storefront queues.
package jobs

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

const ClearCartName = "clear_cart"

// ClearCart empties a buyer's server cart after their order is stored.
// Only UserID and SessionID travel through the queue; Carts is wired by the
// factory registered with the queue manager.
type ClearCart struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`

	Carts repositories.CartRepository `json:"-"`
}

func (j *ClearCart) Name() string { return ClearCartName }

func (j *ClearCart) Handle(ctx context.Context) error {
	if j.UserID == "" || j.UserID == models.UnknownBuyer {
		return nil
	}
	if _, err := j.Carts.Replace(ctx, j.UserID, []models.CartItem{}); err != nil {
		return fmt.Errorf("clear cart for %s: %w", j.UserID, err)
	}
	logger.WithCtx(ctx).Info("cart cleared after order", "user_id", j.UserID, "session_id", j.SessionID)
	return nil
}

// Register adds every job type to q with its dependencies.
func Register(q *queue.Manager, store *repositories.Store) {
	q.Register(ClearCartName, func() queue.Job { return &ClearCart{Carts: store.Carts} })
}

package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories/memory"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

func TestClearCart_Handle(t *testing.T) {
	carts := memory.NewCarts()
	ctx := context.Background()
	_, err := carts.Replace(ctx, "u1", []models.CartItem{{ID: "l1", ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, (&ClearCart{UserID: "u1", SessionID: "cs_1", Carts: carts}).Handle(ctx))

	c, err := carts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestClearCart_SkipsUnknownBuyer(t *testing.T) {
	carts := memory.NewCarts()
	require.NoError(t, (&ClearCart{UserID: models.UnknownBuyer, Carts: carts}).Handle(context.Background()))
}

func TestClearCart_ThroughQueue(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := store.Carts.Replace(ctx, "u1", []models.CartItem{{ID: "l1", ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)

	q := queue.New(queue.NewMemoryDriver())
	Register(q, store)
	go q.Run(ctx, 1)

	require.NoError(t, q.Dispatch(ctx, &ClearCart{UserID: "u1", SessionID: "cs_1"}))

	assert.Eventually(t, func() bool {
		c, _ := store.Carts.Get(ctx, "u1")
		return len(c.Items) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

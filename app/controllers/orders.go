package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Index GET /api/orders
func (h *OrderController) Index(c *ctx.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	orders, err := h.orders.ForUser(c.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}

// BySession GET /api/orders/session/{sessionId}
//
// The success page polls this until the webhook has materialized the order.
func (h *OrderController) BySession(c *ctx.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	o, err := h.orders.BySession(c.Context(), uid, c.Param("sessionId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(o)
}

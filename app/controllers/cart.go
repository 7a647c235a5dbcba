package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

// Show GET /api/cart
func (h *CartController) Show(c *ctx.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	cart, err := h.carts.Get(c.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(cart)
}

// Replace POST /api/cart
func (h *CartController) Replace(c *ctx.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var in services.CartInput
	if !c.BindJSON(&in) {
		return
	}
	cart, err := h.carts.Replace(c.Context(), uid, in.Items)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(cart)
}

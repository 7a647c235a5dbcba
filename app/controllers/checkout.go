package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// SignatureHeader carries the gateway's webhook signature.
const SignatureHeader = "Stripe-Signature"

type CheckoutController struct {
	checkout     *services.CheckoutService
	materializer *services.Materializer
}

func NewCheckoutController(checkout *services.CheckoutService, materializer *services.Materializer) *CheckoutController {
	return &CheckoutController{checkout: checkout, materializer: materializer}
}

// Start POST /api/checkout
func (h *CheckoutController) Start(c *ctx.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var in services.CheckoutInput
	if !c.BindJSON(&in) {
		return
	}
	session, err := h.checkout.Start(c.Context(), uid, in.Items)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]string{"id": session.ID, "url": session.URL})
}

// Webhook POST /api/webhook
//
// The gateway retries on any non-2xx, so only transient failures answer 500.
// Duplicates and ignored event types are acknowledged like new orders.
func (h *CheckoutController) Webhook(c *ctx.Context) {
	payload, err := c.RawBody()
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}

	outcome, _, err := h.materializer.Handle(c.Context(), payload, c.Header(SignatureHeader))
	if err != nil {
		if services.IsTerminal(err) {
			c.Error(http.StatusBadRequest, "Webhook Error: "+err.Error())
			return
		}
		c.Error(http.StatusInternalServerError, "Webhook processing failed")
		return
	}
	c.JSON(http.StatusOK, map[string]any{"received": true, "outcome": outcome})
}

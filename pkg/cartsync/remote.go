package cartsync

import (
	"context"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/http"
)

const cartPath = "/api/cart"

// HTTPRemote talks to the storefront cart endpoint.
type HTTPRemote struct {
	client *http.Client
}

// NewHTTPRemote expects a client that already carries the user's token.
func NewHTTPRemote(client *http.Client) *HTTPRemote {
	return &HTTPRemote{client: client}
}

func (r *HTTPRemote) Fetch(ctx context.Context) ([]models.CartItem, error) {
	var cart models.Cart
	if err := r.client.Get(cartPath).Retry(3, 200*time.Millisecond).Send(ctx).DecodeData(&cart); err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// Replace is not retried: the caller rolls back and the user decides.
func (r *HTTPRemote) Replace(ctx context.Context, items []models.CartItem) ([]models.CartItem, error) {
	var cart models.Cart
	body := map[string]any{"items": items}
	if err := r.client.Post(cartPath).Body(body).Send(ctx).DecodeData(&cart); err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// Package listeners reacts to domain events raised by the services.
package listeners

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/jobs"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/publish"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// Deps are the outputs listeners write to. Nil fields disable the
// matching listener.
type Deps struct {
	Queue     *queue.Manager
	Publisher publish.Publisher
	Hub       *ws.Hub
}

// Register wires the order listeners onto d.
func Register(d *event.Dispatcher, deps Deps) {
	if deps.Queue != nil {
		d.Listen(services.OrderMaterialized, "clear_cart", ClearCart(deps.Queue))
	}
	if deps.Publisher != nil {
		d.Listen(services.OrderMaterialized, "publish", Publish(deps.Publisher))
	}
	if deps.Hub != nil {
		d.Listen(services.OrderMaterialized, "live_feed", Broadcast(deps.Hub))
	}
}

func orderFrom(payload any) (models.Order, error) {
	switch o := payload.(type) {
	case models.Order:
		return o, nil
	case *models.Order:
		return *o, nil
	}
	return models.Order{}, fmt.Errorf("listeners: expected models.Order, got %T", payload)
}

// ClearCart queues a cart wipe for a known buyer.
func ClearCart(q *queue.Manager) event.Listener {
	return func(ctx context.Context, payload any) error {
		o, err := orderFrom(payload)
		if err != nil {
			return err
		}
		if o.UserID == models.UnknownBuyer {
			return nil
		}
		return q.Dispatch(ctx, &jobs.ClearCart{UserID: o.UserID, SessionID: o.SessionID})
	}
}

// Publish sends the order to the configured broker, keyed by session id.
func Publish(p publish.Publisher) event.Listener {
	return func(ctx context.Context, payload any) error {
		o, err := orderFrom(payload)
		if err != nil {
			return err
		}
		msg, err := publish.NewMessage(services.OrderMaterialized, o.SessionID, o)
		if err != nil {
			return err
		}
		return publish.Send(ctx, p, msg)
	}
}

// LiveOrder is what admin dashboards receive over the websocket.
type LiveOrder struct {
	Type  string       `json:"type"`
	Order models.Order `json:"order"`
}

// Broadcast pushes the order to connected admin dashboards.
func Broadcast(hub *ws.Hub) event.Listener {
	return func(_ context.Context, payload any) error {
		o, err := orderFrom(payload)
		if err != nil {
			return err
		}
		msg, err := json.Marshal(LiveOrder{Type: services.OrderMaterialized, Order: o})
		if err != nil {
			return err
		}
		hub.Broadcast(msg)
		return nil
	}
}

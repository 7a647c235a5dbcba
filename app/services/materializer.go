package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/payment"
)

// OrderMaterialized fires with a models.Order once a new order is stored.
const OrderMaterialized = "order.materialized"

// Outcome is how a verified webhook was handled.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// Materializer turns completed checkout sessions into orders. It is the only
// writer of orders, and writes at most one per session id.
type Materializer struct {
	gateway payment.Gateway
	orders  repositories.OrderRepository
	events  *event.Dispatcher
	now     func() time.Time
}

// NewMaterializer wires the gateway and order store. events may be nil.
func NewMaterializer(gateway payment.Gateway, orders repositories.OrderRepository, events *event.Dispatcher) *Materializer {
	return &Materializer{
		gateway: gateway,
		orders:  orders,
		events:  events,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Handle verifies and processes one webhook delivery.
//
// Errors matching IsTerminal mean the envelope is unusable and must not be
// retried. Any other error is transient; a redelivery is safe because the
// session id is unique in the order store.
func (m *Materializer) Handle(ctx context.Context, payload []byte, signature string) (Outcome, *models.Order, error) {
	log := logger.WithCtx(ctx)

	ev, err := m.gateway.ParseEvent(payload, signature)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("rejected").Inc()
		log.Warn("webhook rejected", "outcome", "rejected", "error", err)
		if errors.Is(err, payment.ErrMalformedPayload) {
			return "", nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	log = log.With("event_id", ev.ID, "event_type", ev.Type)
	if ev.Type != payment.EventCheckoutCompleted {
		metrics.WebhookEvents.WithLabelValues(string(OutcomeIgnored)).Inc()
		log.Info("webhook ignored", "outcome", OutcomeIgnored)
		return OutcomeIgnored, nil, nil
	}

	s := ev.Session
	if s == nil || s.ID == "" {
		metrics.WebhookEvents.WithLabelValues("rejected").Inc()
		log.Warn("webhook rejected", "outcome", "rejected", "error", "no session id")
		return "", nil, fmt.Errorf("%w: event %s carries no session id", ErrMalformedEvent, ev.ID)
	}
	log = log.With("session_id", s.ID)

	if s.AmountTotal == nil {
		metrics.WebhookEvents.WithLabelValues("rejected").Inc()
		log.Error("webhook rejected", "outcome", "rejected", "error", ErrMissingTotal)
		return "", nil, fmt.Errorf("%w: session %s", ErrMissingTotal, s.ID)
	}

	// Cheap short-circuit for redeliveries; CreateOnce below is what
	// actually enforces uniqueness.
	if _, err := m.orders.FindBySession(ctx, s.ID); err == nil {
		metrics.WebhookEvents.WithLabelValues(string(OutcomeDuplicate)).Inc()
		log.Info("webhook duplicate", "outcome", OutcomeDuplicate)
		return OutcomeDuplicate, nil, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return "", nil, m.retryable(log, fmt.Errorf("look up session %s: %w", s.ID, err))
	}

	items := s.LineItems
	if items == nil {
		items, err = m.gateway.LineItems(ctx, s.ID)
		if err != nil {
			return "", nil, m.retryable(log, fmt.Errorf("list line items for %s: %w", s.ID, err))
		}
	}

	order := BuildOrder(s, items, m.now())
	err = m.orders.CreateOnce(ctx, &order)
	if errors.Is(err, repositories.ErrDuplicate) {
		metrics.WebhookEvents.WithLabelValues(string(OutcomeDuplicate)).Inc()
		log.Info("webhook duplicate", "outcome", OutcomeDuplicate)
		return OutcomeDuplicate, nil, nil
	}
	if err != nil {
		return "", nil, m.retryable(log, fmt.Errorf("save order for %s: %w", s.ID, err))
	}

	if order.UserID == models.UnknownBuyer {
		metrics.AnonymousOrders.Inc()
		log.Warn("order has no buyer id", "order_id", order.ID)
	}
	metrics.WebhookEvents.WithLabelValues(string(OutcomeCreated)).Inc()
	log.Info("order materialized", "outcome", OutcomeCreated, "order_id", order.ID,
		"user_id", order.UserID, "total", order.Total.StringFixed(2), "items", len(order.Items))

	if m.events != nil {
		m.events.FireAsync(ctx, OrderMaterialized, order)
	}
	return OutcomeCreated, &order, nil
}

func (m *Materializer) retryable(log *slog.Logger, err error) error {
	metrics.WebhookEvents.WithLabelValues("failed").Inc()
	log.Error("webhook failed", "outcome", "failed", "error", err)
	return err
}

// BuildOrder assembles an order from a completed session. Missing shipping
// fields, images and variant tags become nil instead of failing the order.
// The gateway's total is trusted over a recomputed sum.
func BuildOrder(s *payment.CompletedSession, items []payment.LineItem, now time.Time) models.Order {
	order := models.Order{
		SessionID: s.ID,
		UserID:    models.UnknownBuyer,
		Items:     make([]models.OrderItem, 0, len(items)),
		Status:    models.OrderProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if uid := s.Metadata[payment.MetaUserID]; uid != "" {
		order.UserID = uid
	}
	if s.AmountTotal != nil {
		order.Total = minorToDecimal(*s.AmountTotal)
	}

	for _, li := range items {
		item := models.OrderItem{
			ProductID: models.UnknownProduct,
			Name:      li.Name,
			Quantity:  li.Quantity,
			Price:     minorToDecimal(li.UnitAmount),
			Size:      optional(li.Metadata[payment.MetaSize]),
			Color:     optional(li.Metadata[payment.MetaColor]),
		}
		if pid := li.Metadata[payment.MetaProductID]; pid != "" {
			item.ProductID = pid
		}
		if len(li.Images) > 0 {
			item.Image = optional(li.Images[0])
		}
		order.Items = append(order.Items, item)
	}

	if a := s.Shipping; a != nil {
		order.ShippingAddress = models.ShippingAddress{
			Street:  optional(a.Line1),
			City:    optional(a.City),
			State:   optional(a.State),
			Zip:     optional(a.PostalCode),
			Country: optional(a.Country),
		}
	}
	return order
}

// minorToDecimal converts cents to a decimal amount without floats.
func minorToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/payment"
)

type CheckoutItem struct {
	ProductID string          `json:"productId" validate:"required,max=64"`
	Name      string          `json:"name"      validate:"required,max=255"`
	Price     decimal.Decimal `json:"price"     validate:"gte=0"`
	Image     string          `json:"image"     validate:"required,url"`
	Quantity  int64           `json:"quantity"  validate:"gte=1,lte=999"`
	Size      string          `json:"size"      validate:"max=20"`
	Color     string          `json:"color"     validate:"max=50"`
}

type CheckoutInput struct {
	Items []CheckoutItem `json:"items" validate:"required,max=100,dive"`
}

// CheckoutConfig holds the values every session is created with.
type CheckoutConfig struct {
	Currency  string
	Countries []string
	// AppURL is the storefront origin the gateway redirects back to.
	AppURL string
}

// CheckoutService opens hosted payment sessions. The buyer id and per-line
// product metadata ride along so the materializer can rebuild the order.
type CheckoutService struct {
	gateway payment.Gateway
	cfg     CheckoutConfig
}

func NewCheckoutService(gateway payment.Gateway, cfg CheckoutConfig) *CheckoutService {
	return &CheckoutService{gateway: gateway, cfg: cfg}
}

// Start creates a session for userID and returns it; the client redirects
// to Session.URL.
func (s *CheckoutService) Start(ctx context.Context, userID string, items []CheckoutItem) (payment.Session, error) {
	if userID == "" {
		return payment.Session{}, ErrUnauthenticated
	}
	if len(items) == 0 {
		return payment.Session{}, Invalid("items", "The items must have at least 1 items.")
	}

	req := payment.SessionRequest{
		UserID:     userID,
		Currency:   s.cfg.Currency,
		Countries:  s.cfg.Countries,
		SuccessURL: s.cfg.AppURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.cfg.AppURL + "/cart",
		Items:      make([]payment.SessionItem, 0, len(items)),
	}
	for _, it := range items {
		req.Items = append(req.Items, payment.SessionItem{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Image:      it.Image,
			UnitAmount: toMinor(it.Price),
			Quantity:   it.Quantity,
			Size:       it.Size,
			Color:      it.Color,
		})
	}

	session, err := s.gateway.CreateSession(ctx, req)
	if err != nil {
		metrics.CheckoutSessions.WithLabelValues("error").Inc()
		return payment.Session{}, fmt.Errorf("create checkout session: %w", err)
	}
	metrics.CheckoutSessions.WithLabelValues("created").Inc()
	return session, nil
}

// toMinor rounds a price to whole cents, half away from zero.
func toMinor(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}

// Package stripe implements payment.Gateway on Stripe Checkout.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/shashiranjanraj/storefront/pkg/payment"
)

// Gateway talks to the Stripe API with a secret key and verifies webhooks
// with the endpoint's signing secret.
type Gateway struct {
	api           *client.API
	webhookSecret string
}

// Option customises a Gateway.
type Option func(*options)

type options struct {
	backendURL string
}

// WithBackendURL points API calls at another base URL. Used by tests.
func WithBackendURL(url string) Option {
	return func(o *options) { o.backendURL = url }
}

// New returns a Gateway for secretKey. webhookSecret signs inbound events.
func New(secretKey, webhookSecret string, opts ...Option) *Gateway {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	var backends *stripego.Backends
	if o.backendURL != "" {
		cfg := &stripego.BackendConfig{
			URL:               stripego.String(o.backendURL),
			MaxNetworkRetries: stripego.Int64(0),
			LeveledLogger:     &stripego.LeveledLogger{Level: stripego.LevelNull},
		}
		b := stripego.GetBackendWithConfig(stripego.APIBackend, cfg)
		backends = &stripego.Backends{API: b, Connect: b, Uploads: b}
	}

	return &Gateway{api: client.New(secretKey, backends), webhookSecret: webhookSecret}
}

// CreateSession opens a hosted payment page. The buyer id and each line's
// product id, size and color travel as metadata so the webhook can rebuild
// the order.
func (g *Gateway) CreateSession(ctx context.Context, req payment.SessionRequest) (payment.Session, error) {
	params := &stripego.CheckoutSessionParams{
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
		Mode:               stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL:         stripego.String(req.SuccessURL),
		CancelURL:          stripego.String(req.CancelURL),
		ShippingAddressCollection: &stripego.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripego.StringSlice(req.Countries),
		},
		PhoneNumberCollection: &stripego.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripego.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(payment.MetaUserID, req.UserID)

	for _, it := range req.Items {
		product := &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripego.String(it.Name),
			Metadata: map[string]string{
				payment.MetaProductID: it.ProductID,
				payment.MetaSize:      it.Size,
				payment.MetaColor:     it.Color,
			},
		}
		if it.Image != "" {
			product.Images = stripego.StringSlice([]string{it.Image})
		}
		params.LineItems = append(params.LineItems, &stripego.CheckoutSessionLineItemParams{
			Quantity: stripego.Int64(it.Quantity),
			PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripego.String(req.Currency),
				UnitAmount:  stripego.Int64(it.UnitAmount),
				ProductData: product,
			},
		})
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return payment.Session{}, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return payment.Session{ID: s.ID, URL: s.URL}, nil
}

// LineItems lists a session's lines with their products expanded.
func (g *Gateway) LineItems(ctx context.Context, sessionID string) ([]payment.LineItem, error) {
	params := &stripego.CheckoutSessionListLineItemsParams{Session: stripego.String(sessionID)}
	params.Context = ctx
	params.AddExpand("data.price.product")

	var out []payment.LineItem
	iter := g.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		li := iter.LineItem()
		item := payment.LineItem{Name: li.Description, Quantity: li.Quantity}
		if li.Price != nil {
			item.UnitAmount = li.Price.UnitAmount
			if p := li.Price.Product; p != nil {
				if p.Name != "" {
					item.Name = p.Name
				}
				item.Images = p.Images
				item.Metadata = p.Metadata
			}
		}
		out = append(out, item)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("stripe: list line items for %s: %w", sessionID, err)
	}
	return out, nil
}

// ParseEvent verifies the Stripe-Signature header and decodes the event.
// Without a signing secret every event is rejected.
func (g *Gateway) ParseEvent(payload []byte, signature string) (payment.Event, error) {
	if g.webhookSecret == "" {
		return payment.Event{}, fmt.Errorf("%w: webhook signing secret is not configured", payment.ErrInvalidSignature)
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		if isSignatureError(err) {
			return payment.Event{}, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
		}
		return payment.Event{}, fmt.Errorf("%w: %v", payment.ErrMalformedPayload, err)
	}

	out := payment.Event{ID: ev.ID, Type: string(ev.Type)}
	if out.Type != payment.EventCheckoutCompleted {
		return out, nil
	}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return payment.Event{}, fmt.Errorf("%w: event %s has no data object", payment.ErrMalformedPayload, ev.ID)
	}

	var s sessionObject
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return payment.Event{}, fmt.Errorf("%w: %v", payment.ErrMalformedPayload, err)
	}
	out.Session = s.toSession()
	return out, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

var _ payment.Gateway = (*Gateway)(nil)

// Package paymenttest provides an in-memory payment.Gateway. Events are
// signed and verified with the Stripe SDK's webhook scheme, so signature
// rejection is exercised for real.
package paymenttest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/shashiranjanraj/storefront/pkg/payment"
)

// Gateway is a fake payment.Gateway.
type Gateway struct {
	secret string

	mu        sync.Mutex
	sessions  []payment.SessionRequest
	lineItems map[string][]payment.LineItem
	listCalls int

	// CreateErr and LineItemsErr, when set, are returned by the matching call.
	CreateErr    error
	LineItemsErr error
}

// New returns a fake that verifies events against secret.
func New(secret string) *Gateway {
	return &Gateway{secret: secret, lineItems: make(map[string][]payment.LineItem)}
}

func (g *Gateway) CreateSession(_ context.Context, req payment.SessionRequest) (payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.CreateErr != nil {
		return payment.Session{}, g.CreateErr
	}
	g.sessions = append(g.sessions, req)

	id := "cs_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return payment.Session{ID: id, URL: "https://checkout.test/pay/" + id}, nil
}

// Sessions returns every request CreateSession accepted.
func (g *Gateway) Sessions() []payment.SessionRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]payment.SessionRequest(nil), g.sessions...)
}

// SetLineItems registers what LineItems returns for sessionID.
func (g *Gateway) SetLineItems(sessionID string, items []payment.LineItem) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lineItems[sessionID] = items
}

func (g *Gateway) LineItems(_ context.Context, sessionID string) ([]payment.LineItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.listCalls++
	if g.LineItemsErr != nil {
		return nil, g.LineItemsErr
	}
	return g.lineItems[sessionID], nil
}

// LineItemCalls counts LineItems invocations.
func (g *Gateway) LineItemCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.listCalls
}

// ParseEvent verifies the signature and decodes a payment.Event encoded as JSON.
func (g *Gateway) ParseEvent(payload []byte, signature string) (payment.Event, error) {
	if !g.verify(payload, signature) {
		return payment.Event{}, payment.ErrInvalidSignature
	}

	var ev payment.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return payment.Event{}, fmt.Errorf("%w: %v", payment.ErrMalformedPayload, err)
	}
	if ev.Type != payment.EventCheckoutCompleted {
		ev.Session = nil
	} else if ev.Session == nil {
		return payment.Event{}, fmt.Errorf("%w: missing session", payment.ErrMalformedPayload)
	}
	return ev, nil
}

// Sign encodes ev and returns the payload with a valid signature header.
func (g *Gateway) Sign(ev payment.Event) ([]byte, string) {
	payload, err := json.Marshal(ev)
	if err != nil {
		panic(err)
	}
	return payload, g.SignPayload(payload)
}

// SignPayload signs raw bytes with the fake's secret.
func (g *Gateway) SignPayload(payload []byte) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: g.secret}).Header
}

func (g *Gateway) verify(payload []byte, header string) bool {
	if g.secret == "" {
		return false
	}
	return webhook.ValidatePayload(payload, header, g.secret) == nil
}

// Int64 returns a pointer to n, for CompletedSession.AmountTotal.
func Int64(n int64) *int64 { return &n }

var _ payment.Gateway = (*Gateway)(nil)

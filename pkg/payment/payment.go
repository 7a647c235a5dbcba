// Package payment is the boundary to the hosted checkout provider. The
// stripe sub-package talks to Stripe; paymenttest provides a signing fake
// for tests.
package payment

import (
	"context"
	"errors"
)

// EventCheckoutCompleted is the only event type that produces an order.
const EventCheckoutCompleted = "checkout.session.completed"

var (
	// ErrInvalidSignature means the webhook signature does not match the payload.
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	// ErrMalformedPayload means the payload verified but could not be decoded.
	ErrMalformedPayload = errors.New("payment: malformed webhook payload")
)

// Gateway creates hosted checkout sessions and verifies the webhooks the
// provider sends back.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
	// ParseEvent verifies signature against payload before decoding it.
	ParseEvent(payload []byte, signature string) (Event, error)
	LineItems(ctx context.Context, sessionID string) ([]LineItem, error)
}

// SessionRequest describes a checkout. Amounts are in minor units.
type SessionRequest struct {
	UserID     string
	Items      []SessionItem
	Currency   string
	Countries  []string
	SuccessURL string
	CancelURL  string
}

// SessionItem is one priced line of a checkout.
type SessionItem struct {
	ProductID  string
	Name       string
	Image      string
	UnitAmount int64
	Quantity   int64
	Size       string
	Color      string
}

// Session is the provider's answer to CreateSession.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Event is a verified webhook. Session is set only for EventCheckoutCompleted.
type Event struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Session *CompletedSession `json:"session,omitempty"`
}

// CompletedSession is what the provider reports about a paid checkout.
// AmountTotal is nil when the provider omitted it.
type CompletedSession struct {
	ID          string            `json:"id"`
	AmountTotal *int64            `json:"amountTotal"`
	Metadata    map[string]string `json:"metadata"`
	Shipping    *Address          `json:"shipping"`
	// LineItems is nil when the payload did not embed them.
	LineItems []LineItem `json:"lineItems,omitempty"`
}

// Address is a shipping address as reported by the provider. Empty fields
// were not reported.
type Address struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// LineItem is a purchased line with its product data expanded.
type LineItem struct {
	Name       string            `json:"name"`
	Quantity   int64             `json:"quantity"`
	UnitAmount int64             `json:"unitAmount"`
	Images     []string          `json:"images"`
	Metadata   map[string]string `json:"metadata"`
}

// Metadata keys attached at session creation and read back by the webhook.
const (
	MetaUserID    = "userId"
	MetaProductID = "productId"
	MetaSize      = "size"
	MetaColor     = "color"
)

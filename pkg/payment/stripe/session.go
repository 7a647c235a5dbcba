package stripe

import (
	"bytes"
	"encoding/json"

	"github.com/shashiranjanraj/storefront/pkg/payment"
)

// sessionObject is the subset of a checkout.session payload the order needs.
// It is decoded by hand because newer API versions move shipping under
// collected_information, which the SDK types do not carry.
type sessionObject struct {
	ID          string            `json:"id"`
	AmountTotal *int64            `json:"amount_total"`
	Metadata    map[string]string `json:"metadata"`

	ShippingDetails      *shippingObject `json:"shipping_details"`
	CollectedInformation *struct {
		ShippingDetails *shippingObject `json:"shipping_details"`
	} `json:"collected_information"`

	LineItems *struct {
		Data []lineItemObject `json:"data"`
	} `json:"line_items"`
}

type shippingObject struct {
	Address *struct {
		Line1      string `json:"line1"`
		City       string `json:"city"`
		State      string `json:"state"`
		PostalCode string `json:"postal_code"`
		Country    string `json:"country"`
	} `json:"address"`
}

type lineItemObject struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	Price       *struct {
		UnitAmount int64           `json:"unit_amount"`
		Product    json.RawMessage `json:"product"`
	} `json:"price"`
}

type productObject struct {
	Name     string            `json:"name"`
	Images   []string          `json:"images"`
	Metadata map[string]string `json:"metadata"`
}

func (s sessionObject) toSession() *payment.CompletedSession {
	out := &payment.CompletedSession{
		ID:          s.ID,
		AmountTotal: s.AmountTotal,
		Metadata:    s.Metadata,
		LineItems:   s.embeddedLineItems(),
	}

	ship := s.ShippingDetails
	if ship == nil || ship.Address == nil {
		if s.CollectedInformation != nil {
			ship = s.CollectedInformation.ShippingDetails
		}
	}
	if ship != nil && ship.Address != nil {
		a := ship.Address
		out.Shipping = &payment.Address{
			Line1:      a.Line1,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
		}
	}
	return out
}

// embeddedLineItems returns nil unless every embedded line carries an
// expanded product; the caller then lists them from the API.
func (s sessionObject) embeddedLineItems() []payment.LineItem {
	if s.LineItems == nil || len(s.LineItems.Data) == 0 {
		return nil
	}

	out := make([]payment.LineItem, 0, len(s.LineItems.Data))
	for _, li := range s.LineItems.Data {
		if li.Price == nil || !bytes.HasPrefix(bytes.TrimSpace(li.Price.Product), []byte("{")) {
			return nil
		}
		var p productObject
		if err := json.Unmarshal(li.Price.Product, &p); err != nil {
			return nil
		}
		name := p.Name
		if name == "" {
			name = li.Description
		}
		out = append(out, payment.LineItem{
			Name:       name,
			Quantity:   li.Quantity,
			UnitAmount: li.Price.UnitAmount,
			Images:     p.Images,
			Metadata:   p.Metadata,
		})
	}
	return out
}

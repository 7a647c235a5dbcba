package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// UnknownBuyer owns orders whose checkout session carried no buyer id.
const UnknownBuyer = "unknown"

// UnknownProduct stands in for a line item whose product metadata was lost.
const UnknownProduct = "unknown"

// Order is created only by the webhook materializer, at most once per
// payment session. SessionID is unique in every store.
type Order struct {
	ID              string          `bson:"_id,omitempty"   gorm:"primaryKey;size:64"              json:"id"`
	SessionID       string          `bson:"sessionId"       gorm:"uniqueIndex;size:255;not null"   json:"sessionId"`
	UserID          string          `bson:"userId"          gorm:"size:64;not null;index"          json:"userId"`
	Items           []OrderItem     `bson:"items"           gorm:"serializer:json"                 json:"items"`
	Total           decimal.Decimal `bson:"total"           gorm:"type:decimal(12,2)"              json:"total"`
	ShippingAddress ShippingAddress `bson:"shippingAddress" gorm:"serializer:json"                 json:"shippingAddress"`
	Status          OrderStatus     `bson:"status"          gorm:"size:20;not null"                json:"status"`
	CreatedAt       time.Time       `bson:"createdAt"       gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updatedAt"       json:"updatedAt"`
}

// OrderItem is a purchased line as reported by the payment gateway.
type OrderItem struct {
	ProductID string          `bson:"productId" json:"productId"`
	Name      string          `bson:"name"      json:"name"`
	Quantity  int64           `bson:"quantity"  json:"quantity"`
	Price     decimal.Decimal `bson:"price"     json:"price"`
	Image     *string         `bson:"image"     json:"image"`
	Size      *string         `bson:"size"      json:"size"`
	Color     *string         `bson:"color"     json:"color"`
}

// ShippingAddress fields are nil when the gateway did not report them.
type ShippingAddress struct {
	Street  *string `bson:"street"  json:"street"`
	City    *string `bson:"city"    json:"city"`
	State   *string `bson:"state"   json:"state"`
	Zip     *string `bson:"zip"     json:"zip"`
	Country *string `bson:"country" json:"country"`
}

// MonthlyRevenue is one bucket of the admin revenue series.
type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart holds one user's line items. It is always replaced wholesale.
type Cart struct {
	UserID    string     `bson:"userId"    gorm:"primaryKey;size:64" json:"userId"`
	Items     []CartItem `bson:"items"     gorm:"serializer:json"    json:"items"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// CartItem is an order line plus the client-generated id that tells apart
// two variants of the same product.
type CartItem struct {
	ID        string          `bson:"id"              json:"id"`
	ProductID string          `bson:"productId"       json:"productId"`
	Name      string          `bson:"name"            json:"name"`
	Price     decimal.Decimal `bson:"price"           json:"price"`
	Image     string          `bson:"image"           json:"image"`
	Quantity  int             `bson:"quantity"        json:"quantity"`
	Size      string          `bson:"size,omitempty"  json:"size,omitempty"`
	Color     string          `bson:"color,omitempty" json:"color,omitempty"`
}

// SameVariant reports whether two lines describe the same product, size and color.
func (c CartItem) SameVariant(o CartItem) bool {
	return c.ProductID == o.ProductID && c.Size == o.Size && c.Color == o.Color
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog record.
type Product struct {
	ID          string          `bson:"_id,omitempty"         gorm:"primaryKey;size:64"       json:"id"`
	Name        string          `bson:"name"                  gorm:"size:255;not null;index"  json:"name"`
	Description string          `bson:"description,omitempty" gorm:"type:text"                json:"description,omitempty"`
	Price       decimal.Decimal `bson:"price"                 gorm:"type:decimal(12,2)"       json:"price"`
	Category    string          `bson:"category"              gorm:"size:100;not null;index"  json:"category"`
	Images      []string        `bson:"images"                gorm:"serializer:json"          json:"images"`
	Rating      float64         `bson:"rating"                gorm:"not null;default:0"       json:"rating"`
	Reviews     []Review        `bson:"reviews"               gorm:"serializer:json"          json:"reviews"`
	Sizes       []string        `bson:"sizes"                 gorm:"serializer:json"          json:"sizes"`
	Colors      []string        `bson:"colors"                gorm:"serializer:json"          json:"colors"`
	InStock     bool            `bson:"inStock"               gorm:"not null;default:true"    json:"inStock"`
	CreatedAt   time.Time       `bson:"createdAt"             json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt"             json:"updatedAt"`
}

// Review is embedded in a product document.
type Review struct {
	ID         string    `bson:"id"         json:"id"`
	UserID     string    `bson:"userId"     json:"userId"`
	UserName   string    `bson:"userName"   json:"userName"`
	UserAvatar string    `bson:"userAvatar" json:"userAvatar"`
	Rating     float64   `bson:"rating"     json:"rating"`
	Comment    string    `bson:"comment"    json:"comment"`
	CreatedAt  time.Time `bson:"createdAt"  json:"createdAt"`
}

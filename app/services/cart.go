package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

type CartItemInput struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId" validate:"required,max=64"`
	Name      string          `json:"name"      validate:"required,max=255"`
	Price     decimal.Decimal `json:"price"     validate:"gte=0"`
	Image     string          `json:"image"     validate:"nullable,url"`
	Quantity  int             `json:"quantity"  validate:"gte=1,lte=999"`
	Size      string          `json:"size"      validate:"max=20"`
	Color     string          `json:"color"     validate:"max=50"`
}

type CartInput struct {
	Items []CartItemInput `json:"items" validate:"max=100,dive"`
}

// CartService mirrors the client cart. Writes replace the whole list.
type CartService struct {
	carts repositories.CartRepository
}

func NewCartService(carts repositories.CartRepository) *CartService {
	return &CartService{carts: carts}
}

func (s *CartService) Get(ctx context.Context, userID string) (models.Cart, error) {
	return s.carts.Get(ctx, userID)
}

// Replace stores items as the user's cart. Lines without a client id get one.
func (s *CartService) Replace(ctx context.Context, userID string, items []CartItemInput) (models.Cart, error) {
	out := make([]models.CartItem, 0, len(items))
	for _, in := range items {
		id := strings.TrimSpace(in.ID)
		if id == "" {
			id = uuid.NewString()
		}
		out = append(out, models.CartItem{
			ID:        id,
			ProductID: in.ProductID,
			Name:      in.Name,
			Price:     in.Price.Round(2),
			Image:     in.Image,
			Quantity:  in.Quantity,
			Size:      in.Size,
			Color:     in.Color,
		})
	}
	return s.carts.Replace(ctx, userID, out)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	_, err := s.carts.Replace(ctx, userID, []models.CartItem{})
	return err
}

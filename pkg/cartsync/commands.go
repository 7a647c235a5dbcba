package cartsync

import (
	"github.com/google/uuid"

	"github.com/shashiranjanraj/storefront/app/models"
)

// Command is one cart mutation. Apply receives a private copy of the
// current lines and returns the new list.
type Command interface {
	Name() string
	Apply(items []models.CartItem) []models.CartItem
}

// Add puts an item in the cart. A line for the same product, size and
// color absorbs the quantity instead of adding a second line.
type Add struct {
	Item models.CartItem
}

func (Add) Name() string { return "add" }

func (c Add) Apply(items []models.CartItem) []models.CartItem {
	qty := c.Item.Quantity
	if qty < 1 {
		qty = 1
	}
	for i := range items {
		if items[i].SameVariant(c.Item) {
			items[i].Quantity += qty
			return items
		}
	}

	line := c.Item
	line.Quantity = qty
	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	return append(items, line)
}

// Remove drops the line with the given id.
type Remove struct {
	ID string
}

func (Remove) Name() string { return "remove" }

func (c Remove) Apply(items []models.CartItem) []models.CartItem {
	out := items[:0]
	for _, it := range items {
		if it.ID != c.ID {
			out = append(out, it)
		}
	}
	return out
}

// SetQuantity changes a line's quantity. Zero or less removes the line.
type SetQuantity struct {
	ID       string
	Quantity int
}

func (SetQuantity) Name() string { return "set_quantity" }

func (c SetQuantity) Apply(items []models.CartItem) []models.CartItem {
	if c.Quantity < 1 {
		return Remove{ID: c.ID}.Apply(items)
	}
	for i := range items {
		if items[i].ID == c.ID {
			items[i].Quantity = c.Quantity
		}
	}
	return items
}

// Clear empties the cart.
type Clear struct{}

func (Clear) Name() string { return "clear" }

func (Clear) Apply([]models.CartItem) []models.CartItem { return []models.CartItem{} }

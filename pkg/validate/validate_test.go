package validate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/validate"
)

type registerInput struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"nullable,in=user,admin"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registerInput{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "secret1",
	})
	assert.False(t, validate.HasErrors(errs), errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(registerInput{})
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.NotContains(t, errs, "role")
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	assert.Contains(t, validate.Struct(in{Email: "not-an-email"}), "email")
	assert.Empty(t, validate.Struct(in{Email: "valid@example.com"}))
}

func TestStringLength(t *testing.T) {
	type in struct {
		Q string `json:"q" validate:"required,min=1,max=5"`
	}
	assert.Empty(t, validate.Struct(in{Q: "shoes"}))
	assert.Equal(t, "The q must not exceed 5 characters.", validate.Struct(in{Q: "sneakers"})["q"])
}

func TestInRule(t *testing.T) {
	type in struct {
		Status string `json:"status" validate:"required,in=pending,processing,shipped"`
	}
	assert.Contains(t, validate.Struct(in{Status: "lost"}), "status")
	assert.Empty(t, validate.Struct(in{Status: "shipped"}))
}

func TestNullableSkipsRules(t *testing.T) {
	type in struct {
		Website string `json:"website" validate:"nullable,url"`
	}
	assert.Empty(t, validate.Struct(in{Website: ""}))
	assert.Contains(t, validate.Struct(in{Website: "not-a-url"}), "website")
}

func TestBetweenRule(t *testing.T) {
	type in struct {
		Rating float64 `json:"rating" validate:"between=0,5"`
	}
	assert.Contains(t, validate.Struct(in{Rating: 7}), "rating")
	assert.Empty(t, validate.Struct(in{Rating: 4.5}))
}

func TestDecimalCountsAsNumber(t *testing.T) {
	type in struct {
		Price decimal.Decimal `json:"price" validate:"gte=0"`
	}
	assert.Empty(t, validate.Struct(in{Price: decimal.RequireFromString("19.99")}))
	assert.Contains(t, validate.Struct(in{Price: decimal.RequireFromString("-0.01")}), "price")
}

func TestDiveIntoScalars(t *testing.T) {
	type in struct {
		Images []string `json:"images" validate:"dive,url"`
	}
	assert.Empty(t, validate.Struct(in{Images: []string{"https://cdn.example.com/a.png"}}))

	errs := validate.Struct(in{Images: []string{"https://cdn.example.com/a.png", "a.png"}})
	assert.Contains(t, errs, "images.1")
	assert.NotContains(t, errs, "images.0")
}

func TestDiveIntoStructs(t *testing.T) {
	type item struct {
		ProductID string `json:"productId" validate:"required"`
		Quantity  int    `json:"quantity"  validate:"required,gte=1"`
	}
	type in struct {
		Items []item `json:"items" validate:"required,min=1,dive"`
	}

	assert.Contains(t, validate.Struct(in{}), "items")

	errs := validate.Struct(in{Items: []item{{ProductID: "p1", Quantity: 1}, {Quantity: 0}}})
	assert.Contains(t, errs, "items.1.productId")
	assert.Contains(t, errs, "items.1.quantity")
	assert.Len(t, errs, 2)
}

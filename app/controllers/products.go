package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// Index GET /api/products?category=
func (h *ProductController) Index(c *ctx.Context) {
	products, err := h.catalog.List(c.Context(), c.Query("category"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(products)
}

type searchQuery struct {
	Q string `json:"q" validate:"required,min=1,max=255"`
}

// Search GET /api/products/search?q=
func (h *ProductController) Search(c *ctx.Context) {
	q := searchQuery{Q: c.Query("q")}
	if errs := c.Validate(q); len(errs) > 0 {
		c.ValidationError(errs)
		return
	}
	products, err := h.catalog.Search(c.Context(), q.Q)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(products)
}

// Show GET /api/products/{id}
func (h *ProductController) Show(c *ctx.Context) {
	p, err := h.catalog.Find(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(p)
}

// Store POST /api/products
func (h *ProductController) Store(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := h.catalog.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(p)
}

// Update PUT /api/products/{id}
func (h *ProductController) Update(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := h.catalog.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(p)
}

// Destroy DELETE /api/products/{id}
func (h *ProductController) Destroy(c *ctx.Context) {
	if err := h.catalog.Delete(c.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Message("Product deleted")
}

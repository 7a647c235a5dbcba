package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type AdminController struct {
	admin   *services.AdminService
	uploads *services.UploadService
}

func NewAdminController(admin *services.AdminService, uploads *services.UploadService) *AdminController {
	return &AdminController{admin: admin, uploads: uploads}
}

// Stats GET /api/admin/stats
func (h *AdminController) Stats(c *ctx.Context) {
	st, err := h.admin.Stats(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(st)
}

// Users GET /api/admin/users
func (h *AdminController) Users(c *ctx.Context) {
	users, err := h.admin.Users(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(users)
}

// DeleteUser DELETE /api/admin/users/{id}
func (h *AdminController) DeleteUser(c *ctx.Context) {
	actor, ok := userID(c)
	if !ok {
		return
	}
	if err := h.admin.DeleteUser(c.Context(), actor, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Message("User deleted")
}

// Orders GET /api/admin/orders
func (h *AdminController) Orders(c *ctx.Context) {
	orders, err := h.admin.Orders(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}

// Upload POST /api/admin/uploads (multipart field "file")
func (h *AdminController) Upload(c *ctx.Context) {
	file, header, err := c.FormFile("file", services.MaxImageBytes+(1<<20))
	if err != nil {
		c.ValidationError(map[string]string{"file": "The file field is required."})
		return
	}
	defer file.Close()

	up, err := h.uploads.StoreImage(c.Context(), file, header.Size)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(up)
}

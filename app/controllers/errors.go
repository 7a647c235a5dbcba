// Package controllers adapts HTTP requests to the services.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// fail maps a service error to a status and writes it. Unknown errors are
// logged and hidden behind a generic 500.
func fail(c *ctx.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		c.ValidationError(ve.Fields)
	case errors.Is(err, services.ErrUnauthenticated):
		c.Unauthorized()
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized("Invalid email or password")
	case errors.Is(err, services.ErrForbidden):
		c.Forbidden()
	case errors.Is(err, services.ErrEmailTaken):
		c.Error(http.StatusBadRequest, "Email already registered")
	case errors.Is(err, services.ErrInvalidID):
		c.Error(http.StatusBadRequest, "Invalid id")
	case errors.Is(err, services.ErrNotFound):
		c.NotFound()
	case errors.Is(err, repositories.ErrDuplicate):
		c.Error(http.StatusConflict, "Already exists")
	case services.IsTerminal(err):
		c.Error(http.StatusBadRequest, err.Error())
	default:
		c.Log().Error("request failed", "path", c.R.URL.Path, "error", err)
		c.Error(http.StatusInternalServerError, "Internal server error")
	}
}

// userID returns the authenticated caller, writing 401 when there is none.
func userID(c *ctx.Context) (string, bool) {
	id, ok := c.Identity()
	if !ok || id.UserID == "" {
		c.Unauthorized()
		return "", false
	}
	return id.UserID, true
}

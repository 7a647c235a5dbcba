package controllers

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type AuthController struct {
	auth       *services.AuthService
	cookieTTL  time.Duration
	secureOnly bool
}

// NewAuthController sets Secure on the auth cookie when secureOnly is true.
func NewAuthController(svc *services.AuthService, cookieTTL time.Duration, secureOnly bool) *AuthController {
	return &AuthController{auth: svc, cookieTTL: cookieTTL, secureOnly: secureOnly}
}

func (h *AuthController) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureOnly,
		SameSite: http.SameSiteLaxMode,
	}
}

// Register POST /api/auth/register
func (h *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	out, err := h.auth.Register(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.SetCookie(h.cookie(out.Token, int(h.cookieTTL.Seconds())))
	c.Created(out.User)
}

// Login POST /api/auth/login
func (h *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	out, err := h.auth.Login(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.SetCookie(h.cookie(out.Token, int(h.cookieTTL.Seconds())))
	c.Success(out.User)
}

// Logout POST /api/auth/logout
func (h *AuthController) Logout(c *ctx.Context) {
	c.SetCookie(h.cookie("", -1))
	c.Message("Logged out")
}

// Me GET /api/users/me
func (h *AuthController) Me(c *ctx.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	u, err := h.auth.Me(c.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(u)
}

// UpdateAddress PUT /api/users/me/address
func (h *AuthController) UpdateAddress(c *ctx.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var in services.AddressInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := h.auth.UpdateAddress(c.Context(), uid, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(u)
}

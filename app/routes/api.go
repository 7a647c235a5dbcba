// Package routes declares the storefront's HTTP surface.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/health"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Auth     *controllers.AuthController
	Products *controllers.ProductController
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Orders   *controllers.OrderController
	Admin    *controllers.AdminController

	GraphQL  http.HandlerFunc
	LiveFeed http.Handler
	Health   *health.Checks
	// Files serves the local upload disk under /storage.
	Files http.Handler
}

func RegisterAPI(r *router.Router, tokens *auth.Tokens, h Handlers) {
	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/livez", "health.live", health.Live)
	if h.Health != nil {
		r.Get("/healthz", "health.ready", h.Health.Handler())
	}
	if h.Files != nil {
		r.Get("/storage/*", "storage", http.StripPrefix("/storage", h.Files).ServeHTTP)
	}
	if h.GraphQL != nil {
		r.Post("/graphql", "graphql", h.GraphQL)
	}

	api := r.Group("/api", middleware.Authenticate(tokens))

	// Verified by signature, not by session.
	api.Post("/webhook", "checkout.webhook", ctx.Wrap(h.Checkout.Webhook))

	guest := api.Group("/auth", rbac.Guest)
	guest.Post("/register", "auth.register", ctx.Wrap(h.Auth.Register))
	guest.Post("/login", "auth.login", ctx.Wrap(h.Auth.Login))
	api.Post("/auth/logout", "auth.logout", ctx.Wrap(h.Auth.Logout))

	api.Get("/products", "products.index", ctx.Wrap(h.Products.Index))
	api.Get("/products/search", "products.search", ctx.Wrap(h.Products.Search))
	api.Get("/products/{id}", "products.show", ctx.Wrap(h.Products.Show))

	user := api.Group("", middleware.RequireAuth)
	user.Get("/users/me", "users.me", ctx.Wrap(h.Auth.Me))
	user.Put("/users/me/address", "users.address", ctx.Wrap(h.Auth.UpdateAddress))
	user.Get("/cart", "cart.show", ctx.Wrap(h.Cart.Show))
	user.Post("/cart", "cart.replace", ctx.Wrap(h.Cart.Replace))
	user.Post("/checkout", "checkout.start", ctx.Wrap(h.Checkout.Start))
	user.Get("/orders", "orders.index", ctx.Wrap(h.Orders.Index))
	user.Get("/orders/session/{sessionId}", "orders.session", ctx.Wrap(h.Orders.BySession))

	admin := api.Group("", rbac.HasRole("admin"))
	admin.Post("/products", "products.store", ctx.Wrap(h.Products.Store))
	admin.Put("/products/{id}", "products.update", ctx.Wrap(h.Products.Update))
	admin.Delete("/products/{id}", "products.destroy", ctx.Wrap(h.Products.Destroy))

	panel := admin.Group("/admin")
	panel.Get("/stats", "admin.stats", ctx.Wrap(h.Admin.Stats))
	panel.Get("/users", "admin.users", ctx.Wrap(h.Admin.Users))
	panel.Delete("/users/{id}", "admin.users.destroy", ctx.Wrap(h.Admin.DeleteUser))
	panel.Get("/orders", "admin.orders", ctx.Wrap(h.Admin.Orders))
	panel.Post("/uploads", "admin.uploads", ctx.Wrap(h.Admin.Upload))
	if h.LiveFeed != nil {
		panel.Get("/orders/live", "admin.orders.live", h.LiveFeed.ServeHTTP)
	}
}

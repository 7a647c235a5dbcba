package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func tagger(tag string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", tag)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroupsAndMiddlewareOrder(t *testing.T) {
	r := New()
	api := r.Group("/api", tagger("api"))
	admin := api.Group("/admin", tagger("admin"))
	admin.Delete("/users/{id}", "admin.users.destroy", ok, tagger("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/admin/users/u1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"api", "admin", "route"}, rec.Header().Values("X-Chain"))
}

func TestNamedRouteURL(t *testing.T) {
	r := New()
	r.Group("/api").Put("/products/{id}", "products.update", ok)

	url, err := r.URL("products.update", map[string]string{"id": "p1"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/p1", url)

	_, err = r.URL("products.update", nil)
	assert.Error(t, err)

	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutesTable(t *testing.T) {
	r := New()
	r.Get("/metrics", "metrics", ok)
	api := r.Group("/api")
	api.Post("/cart", "cart.replace", ok)
	api.Get("/cart", "cart.show", ok)

	assert.Equal(t, []Route{
		{Method: "GET", Path: "/api/cart", Name: "cart.show"},
		{Method: "POST", Path: "/api/cart", Name: "cart.replace"},
		{Method: "GET", Path: "/metrics", Name: "metrics"},
	}, r.Routes())
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "/", joinPath("", "/"))
	assert.Equal(t, "/api/orders", joinPath("/api/", "/orders/"))
}

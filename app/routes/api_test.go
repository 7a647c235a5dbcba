package routes_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/repositories/memory"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/health"
	"github.com/shashiranjanraj/storefront/pkg/payment"
	"github.com/shashiranjanraj/storefront/pkg/payment/paymenttest"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

const webhookSecret = "whsec_routes"

type testApp struct {
	handler http.Handler
	store   *repositories.Store
	gw      *paymenttest.Gateway
	tokens  *auth.Tokens
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := memory.NewStore()
	gw := paymenttest.New(webhookSecret)
	tokens := auth.NewTokens("routes-test-secret")

	disk, err := storage.NewLocal(t.TempDir(), "http://files.test/storage")
	require.NoError(t, err)

	catalog := services.NewCatalogService(store.Products, cache.New(cache.NewMemoryDriver(), "test"), time.Minute)
	gql, err := controllers.GraphQL(catalog)
	require.NoError(t, err)

	checks := health.New(0)
	checks.Add("store", store.Ping)

	h := routes.Handlers{
		Auth:     controllers.NewAuthController(services.NewAuthService(store.Users, tokens), tokens.TTL(), false),
		Products: controllers.NewProductController(catalog),
		Cart:     controllers.NewCartController(services.NewCartService(store.Carts)),
		Checkout: controllers.NewCheckoutController(
			services.NewCheckoutService(gw, services.CheckoutConfig{
				Currency: "usd", Countries: []string{"US"}, AppURL: "http://shop.test",
			}),
			services.NewMaterializer(gw, store.Orders, nil),
		),
		Orders:  controllers.NewOrderController(services.NewOrderService(store.Orders)),
		Admin:   controllers.NewAdminController(services.NewAdminService(store), services.NewUploadService(disk)),
		GraphQL: gql,
		Health:  checks,
	}

	r := server.NewRouter(server.Options{CORSOrigins: []string{"http://shop.test"}})
	routes.RegisterAPI(r, tokens, h)

	return &testApp{handler: r.Handler(), store: store, gw: gw, tokens: tokens}
}

// user creates an account directly in the store and returns a bearer token.
func (a *testApp) user(t *testing.T, email, role string) (models.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)

	u := models.User{Email: email, Name: "Test", PasswordHash: hash, Role: role}
	require.NoError(t, a.store.Users.Create(context.Background(), &u))

	token, err := a.tokens.Issue(u.ID, role)
	require.NoError(t, err)
	return u, token
}

func (a *testApp) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestRegisterSetsAuthCookie(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "ada@example.com", "password": "secret123", "name": "Ada",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.NotContains(t, rec.Body.String(), "password")

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.AddCookie(cookie)
	me := httptest.NewRecorder()
	app.handler.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), "ada@example.com")
}

func TestRegisterValidationAndDuplicates(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "not-an-email", "password": "123", "name": "",
	}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decode(t, rec)
	assert.Contains(t, env.Errors, "email")
	assert.Contains(t, env.Errors, "password")

	body := map[string]string{"email": "dup@example.com", "password": "secret123", "name": "Dup"}
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/auth/register", body, "").Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, "/api/auth/register", body, "").Code)
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "bob@example.com", models.RoleUser)

	bad := app.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "bob@example.com", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, bad.Code)

	ok := app.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "bob@example.com", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, ok.Code)
	assert.NotEmpty(t, ok.Result().Cookies())
}

func TestGuestRoutesRejectSignedInCallers(t *testing.T) {
	app := newTestApp(t)
	_, token := app.user(t, "in@example.com", models.RoleUser)

	rec := app.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "in@example.com", "password": "secret123",
	}, token)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestAddressUpdate(t *testing.T) {
	app := newTestApp(t)
	_, token := app.user(t, "addr@example.com", models.RoleUser)

	rec := app.do(t, http.MethodPut, "/api/users/me/address", map[string]string{"street": "1 Main"}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = app.do(t, http.MethodPut, "/api/users/me/address", map[string]string{
		"street": "1 Main", "city": "Springfield", "state": "IL", "zip": "62701", "country": "US",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Springfield")
}

func TestProductWritesNeedAdmin(t *testing.T) {
	app := newTestApp(t)
	_, userToken := app.user(t, "u@example.com", models.RoleUser)
	_, adminToken := app.user(t, "a@example.com", models.RoleAdmin)

	product := map[string]any{"name": "Linen Shirt", "price": 49.5, "category": "Shirts"}

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/api/products", product, "").Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodPost, "/api/products", product, userToken).Code)

	rec := app.do(t, http.MethodPost, "/api/products", product, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Product
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &created))
	assert.True(t, decimal.RequireFromString("49.5").Equal(created.Price))

	show := app.do(t, http.MethodGet, "/api/products/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, show.Code)

	list := app.do(t, http.MethodGet, "/api/products?category=Shirts", nil, "")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "Linen Shirt")

	del := app.do(t, http.MethodDelete, "/api/products/"+created.ID, nil, adminToken)
	require.Equal(t, http.StatusOK, del.Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/products/"+created.ID, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodDelete, "/api/products/"+created.ID, nil, adminToken).Code)
}

func TestProductSearch(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, app.store.Products.Create(ctx, &models.Product{Name: "Suede Boots", Category: "Shoes"}))
	require.NoError(t, app.store.Products.Create(ctx, &models.Product{Name: "Oud Perfume", Category: "Perfumes"}))

	assert.Equal(t, http.StatusUnprocessableEntity, app.do(t, http.MethodGet, "/api/products/search", nil, "").Code)

	rec := app.do(t, http.MethodGet, "/api/products/search?q=boots", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Suede Boots")
	assert.NotContains(t, rec.Body.String(), "Oud Perfume")
}

func TestCartRoundTrip(t *testing.T) {
	app := newTestApp(t)
	_, token := app.user(t, "cart@example.com", models.RoleUser)

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/cart", nil, "").Code)

	empty := app.do(t, http.MethodGet, "/api/cart", nil, token)
	require.Equal(t, http.StatusOK, empty.Code)
	assert.Contains(t, empty.Body.String(), `"items":[]`)

	rec := app.do(t, http.MethodPost, "/api/cart", map[string]any{
		"items": []map[string]any{{
			"productId": "p1", "name": "Shirt", "price": 19.99,
			"image": "https://img.test/s.jpg", "quantity": 2, "size": "M",
		}},
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cart models.Cart
	require.NoError(t, json.Unmarshal(decode(t, app.do(t, http.MethodGet, "/api/cart", nil, token)).Data, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.NotEmpty(t, cart.Items[0].ID)
}

func TestCheckoutReturnsURL(t *testing.T) {
	app := newTestApp(t)
	u, token := app.user(t, "buyer@example.com", models.RoleUser)

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/api/checkout", map[string]any{}, "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, app.do(t, http.MethodPost, "/api/checkout", map[string]any{"items": []any{}}, token).Code)

	rec := app.do(t, http.MethodPost, "/api/checkout", map[string]any{
		"items": []map[string]any{{
			"productId": "p1", "name": "Shirt", "price": 19.99,
			"image": "https://img.test/s.jpg", "quantity": 1,
		}},
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out map[string]string
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))
	assert.True(t, strings.HasPrefix(out["url"], "https://checkout.test/pay/"))

	sessions := app.gw.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, u.ID, sessions[0].UserID)
}

func completedEvent(sessionID, userID string) payment.Event {
	return payment.Event{
		ID:   "evt_" + sessionID,
		Type: payment.EventCheckoutCompleted,
		Session: &payment.CompletedSession{
			ID:          sessionID,
			AmountTotal: paymenttest.Int64(3998),
			Metadata:    map[string]string{payment.MetaUserID: userID},
		},
	}
}

func (a *testApp) webhook(t *testing.T, payload []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader(payload))
	req.Header.Set(controllers.SignatureHeader, sig)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func TestWebhookMaterializesOrderOnce(t *testing.T) {
	app := newTestApp(t)
	u, token := app.user(t, "paid@example.com", models.RoleUser)
	_, otherToken := app.user(t, "other@example.com", models.RoleUser)

	app.gw.SetLineItems("cs_routes", []payment.LineItem{{
		Name: "Shirt", Quantity: 2, UnitAmount: 1999,
		Metadata: map[string]string{payment.MetaProductID: "p1"},
	}})
	payload, sig := app.gw.Sign(completedEvent("cs_routes", u.ID))

	first := app.webhook(t, payload, sig)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Contains(t, first.Body.String(), `"received":true`)
	assert.Contains(t, first.Body.String(), `"created"`)

	again := app.webhook(t, payload, sig)
	require.Equal(t, http.StatusOK, again.Code)
	assert.Contains(t, again.Body.String(), `"duplicate"`)

	n, err := app.store.Orders.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	mine := app.do(t, http.MethodGet, "/api/orders", nil, token)
	require.Equal(t, http.StatusOK, mine.Code)
	assert.Contains(t, mine.Body.String(), "cs_routes")

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/orders/session/cs_routes", nil, token).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/orders/session/cs_routes", nil, otherToken).Code)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app := newTestApp(t)
	payload, _ := app.gw.Sign(completedEvent("cs_forged", "u1"))

	rec := app.webhook(t, payload, "t=1,v1=deadbeef")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	n, _ := app.store.Orders.Count(context.Background())
	assert.Zero(t, n)
}

func TestWebhookRetryableFailureAnswers500(t *testing.T) {
	app := newTestApp(t)
	app.gw.LineItemsErr = assert.AnError

	payload, sig := app.gw.Sign(completedEvent("cs_flaky", "u1"))
	assert.Equal(t, http.StatusInternalServerError, app.webhook(t, payload, sig).Code)

	app.gw.LineItemsErr = nil
	assert.Equal(t, http.StatusOK, app.webhook(t, payload, sig).Code)
}

func TestAdminEndpoints(t *testing.T) {
	app := newTestApp(t)
	admin, adminToken := app.user(t, "boss@example.com", models.RoleAdmin)
	victim, userToken := app.user(t, "gone@example.com", models.RoleUser)

	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, "/api/admin/stats", nil, userToken).Code)

	stats := app.do(t, http.MethodGet, "/api/admin/stats", nil, adminToken)
	require.Equal(t, http.StatusOK, stats.Code)
	assert.Contains(t, stats.Body.String(), `"totalUsers":2`)

	users := app.do(t, http.MethodGet, "/api/admin/users", nil, adminToken)
	require.Equal(t, http.StatusOK, users.Code)
	assert.Contains(t, users.Body.String(), "gone@example.com")

	assert.Equal(t, http.StatusUnprocessableEntity,
		app.do(t, http.MethodDelete, "/api/admin/users/"+admin.ID, nil, adminToken).Code)
	require.Equal(t, http.StatusOK,
		app.do(t, http.MethodDelete, "/api/admin/users/"+victim.ID, nil, adminToken).Code)
	assert.Equal(t, http.StatusNotFound,
		app.do(t, http.MethodDelete, "/api/admin/users/"+victim.ID, nil, adminToken).Code)

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/admin/orders", nil, adminToken).Code)
}

// 1x1 transparent PNG.
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func TestAdminUpload(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := app.user(t, "img@example.com", models.RoleAdmin)

	png, err := base64.StdEncoding.DecodeString(pixelPNG)
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "pixel.png")
	require.NoError(t, err)
	_, _ = fw.Write(png)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var up services.Upload
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &up))
	assert.True(t, strings.HasSuffix(up.Path, ".png"))
	assert.True(t, strings.HasPrefix(up.URL, "http://files.test/storage/products/"))
}

func TestAdminUploadRequiresFile(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := app.user(t, "nofile@example.com", models.RoleAdmin)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "empty"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGraphQLCatalog(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	p := models.Product{Name: "Wool Scarf", Category: "Accessories", Price: decimal.RequireFromString("25.50")}
	require.NoError(t, app.store.Products.Create(ctx, &p))

	rec := app.do(t, http.MethodPost, "/graphql", map[string]any{
		"query":     `query($id: ID!) { product(id: $id) { name price } products(category: "Accessories") { id } }`,
		"variables": map[string]any{"id": p.ID},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Data struct {
			Product struct {
				Name  string  `json:"name"`
				Price float64 `json:"price"`
			} `json:"product"`
			Products []struct {
				ID string `json:"id"`
			} `json:"products"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Empty(t, out.Errors)
	assert.Equal(t, "Wool Scarf", out.Data.Product.Name)
	assert.InDelta(t, 25.5, out.Data.Product.Price, 0.001)
	require.Len(t, out.Data.Products, 1)
	assert.Equal(t, p.ID, out.Data.Products[0].ID)
}

func TestOperationalEndpoints(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/livez", nil, "").Code)

	ready := app.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, ready.Code)
	assert.Contains(t, ready.Body.String(), `"store"`)

	metrics := app.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, metrics.Code)

	missing := app.do(t, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, http.StatusNotFound, decode(t, missing).Status)
}

func TestRouteTableIsNamed(t *testing.T) {
	r := server.NewRouter(server.Options{})
	routes.RegisterAPI(r, auth.NewTokens("x"), routes.Handlers{})

	for _, name := range []string{
		"auth.register", "auth.login", "auth.logout", "users.me", "users.address",
		"products.index", "products.search", "products.show", "products.store",
		"products.update", "products.destroy", "cart.show", "cart.replace",
		"checkout.start", "checkout.webhook", "orders.index", "orders.session",
		"admin.stats", "admin.users", "admin.users.destroy", "admin.orders", "admin.uploads",
	} {
		_, ok := r.Path(name)
		assert.True(t, ok, name)
	}

	path, err := r.URL("products.show", map[string]string{"id": "p1"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/p1", path)
}

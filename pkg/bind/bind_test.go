package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/config"
)

type loginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestJSON_Valid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"x"}`))

	var in loginInput
	errs, err := JSON(req, &in)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "a@b.co", in.Email)
}

func TestJSON_ValidationErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))

	var in loginInput
	errs, err := JSON(req, &in)
	require.NoError(t, err)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestJSON_Malformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))

	var in loginInput
	_, err := JSON(req, &in)
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestJSON_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))

	var in loginInput
	_, err := JSON(req, &in)
	assert.EqualError(t, err, "request body is empty")
}

func TestRaw_TooLarge(t *testing.T) {
	config.Set("MAX_BODY_BYTES", "8")
	t.Cleanup(func() { config.Set("MAX_BODY_BYTES", "") })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`0123456789`))
	_, err := Raw(req)
	assert.ErrorContains(t, err, "too large")
}

func TestRaw_ReturnsExactBytes(t *testing.T) {
	body := `{"id":"evt_1", "type":"x"}`
	got, err := Raw(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

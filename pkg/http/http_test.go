package http

import (
	"context"
	"encoding/json"
	gohttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_DecodeData(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"status":200,"data":{"n":7}}`))
	}))
	defer srv.Close()

	var out struct{ N int }
	err := NewClient(srv.URL, WithBearer("tok")).Get("/thing").Send(context.Background()).DecodeData(&out)
	require.NoError(t, err)
	assert.Equal(t, 7, out.N)
}

func TestPost_SendsJSON(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 3, body["qty"])
		w.WriteHeader(gohttp.StatusCreated)
	}))
	defer srv.Close()

	resp := NewClient(srv.URL).Post("items").Body(map[string]int{"qty": 3}).Send(context.Background())
	require.NoError(t, resp.Err())
	assert.Equal(t, gohttp.StatusCreated, resp.StatusCode)
}

func TestRetry_On5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(gohttp.StatusBadGateway)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp := NewClient(srv.URL).Get("/").Retry(3, time.Millisecond).Send(context.Background())
	require.NoError(t, resp.Err())
	assert.Equal(t, int32(3), calls.Load())
}

func TestNoRetry_On4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		calls.Add(1)
		w.WriteHeader(gohttp.StatusUnauthorized)
		w.Write([]byte(`{"status":401}`))
	}))
	defer srv.Close()

	resp := NewClient(srv.URL).Get("/").Retry(3, time.Millisecond).Send(context.Background())

	var se *StatusError
	require.ErrorAs(t, resp.Err(), &se)
	assert.Equal(t, gohttp.StatusUnauthorized, se.Code)
	assert.Equal(t, int32(1), calls.Load())
}

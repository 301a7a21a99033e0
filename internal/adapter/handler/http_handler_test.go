package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/cart-store/pkg/metrics"
)

func newTestServer(t *testing.T, opts ...BinderOption) (*httptest.Server, *metrics.ServerMetrics) {
	t.Helper()
	binder, store, _ := newTestBinder(t, nil, opts...)
	require.NoError(t, binder.LoadCatalog(context.Background()))

	m := metrics.NewServerMetrics(prometheus.NewRegistry(), "test")
	mux := http.NewServeMux()
	NewHTTPHandler(binder, store, m).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, m
}

func doJSON(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHTTP_AddAndChangeQuantity(t *testing.T) {
	srv, m := newTestServer(t)

	var grid ProductGrid
	status := doJSON(t, http.MethodPost, srv.URL+"/api/cart/items", `{"id":"api-1"}`, &grid)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, grid.CartCount)

	var page CartPage
	status = doJSON(t, http.MethodPatch, srv.URL+"/api/cart/items/api-1", `{"delta":2}`, &page)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, page.Lines, 1)
	assert.Equal(t, 3, page.Lines[0].Quantity)
	assert.Equal(t, "60", page.Summary.Total.String())

	status = doJSON(t, http.MethodPatch, srv.URL+"/api/cart/items/api-1", `{"delta":-3}`, &page)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, page.Empty)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("cart_add", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CartItems))
}

func TestHTTP_AddErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp ErrorHTTPResponse
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, srv.URL+"/api/cart/items", `{`, &resp))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodPost, srv.URL+"/api/cart/items", `{"id":"api-404"}`, &resp))
	assert.Equal(t, "unknown product", resp.Message)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, srv.URL+"/api/cart/items", `{"id":"","title":"x"}`, &resp))
}

func TestHTTP_FractionalDeltaRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	doJSON(t, http.MethodPost, srv.URL+"/api/cart/items", `{"id":"api-1"}`, nil)

	var resp ErrorHTTPResponse
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPatch, srv.URL+"/api/cart/items/api-1", `{"delta":0.5}`, &resp))

	var page CartPage
	doJSON(t, http.MethodGet, srv.URL+"/api/cart", "", &page)
	require.Len(t, page.Lines, 1)
	assert.Equal(t, 1, page.Lines[0].Quantity)
}

func TestHTTP_RemoveClearAndProducts(t *testing.T) {
	srv, _ := newTestServer(t)
	doJSON(t, http.MethodPost, srv.URL+"/api/cart/items", `{"id":"api-1"}`, nil)
	doJSON(t, http.MethodPost, srv.URL+"/api/cart/items", `{"id":"api-2"}`, nil)

	var grid ProductGrid
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/api/products", "", &grid))
	for _, c := range grid.Cards {
		assert.True(t, c.Disabled, c.ID)
	}

	var page CartPage
	doJSON(t, http.MethodDelete, srv.URL+"/api/cart/items/api-1", "", &page)
	assert.Len(t, page.Lines, 1)

	doJSON(t, http.MethodDelete, srv.URL+"/api/cart", "", &page)
	assert.True(t, page.Empty)
}

func TestHTTP_Checkout(t *testing.T) {
	srv, _ := newTestServer(t, WithClearOnCheckout(true))
	doJSON(t, http.MethodPost, srv.URL+"/api/cart/items", `{"id":"api-2"}`, nil)

	var receipt Receipt
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, srv.URL+"/api/checkout", "", &receipt))
	assert.Equal(t, 1, receipt.Items)
	assert.Equal(t, "35", receipt.Total.String())
	assert.True(t, receipt.Cleared)
}

func TestHTTP_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	var body map[string]string
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/health", "", &body))
	assert.Equal(t, "ok", body["storage"])
}

func TestHTTP_RefreshFailure(t *testing.T) {
	binder, store, _ := newTestBinder(t, failingCatalog{})
	mux := http.NewServeMux()
	NewHTTPHandler(binder, store, nil).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products/refresh", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var grid ProductGrid
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&grid))
	assert.Equal(t, MessageCatalogFailed, grid.Message)
}

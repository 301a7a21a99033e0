package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rl1809/cart-store/internal/core/service"
	"github.com/rl1809/cart-store/pkg/metrics"
)

type HTTPHandler struct {
	binder  *ViewBinder
	store   *service.CartStore
	metrics *metrics.ServerMetrics
}

type ChangeQuantityHTTPRequest struct {
	Delta int `json:"delta"`
}

type ErrorHTTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewHTTPHandler(binder *ViewBinder, store *service.CartStore, m *metrics.ServerMetrics) *HTTPHandler {
	return &HTTPHandler{binder: binder, store: store, metrics: m}
}

// Register mounts every route on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	h.handle(mux, "GET /health", "health", h.HealthCheck)
	h.handle(mux, "GET /api/products", "products", h.Products)
	h.handle(mux, "POST /api/products/refresh", "products_refresh", h.RefreshProducts)
	h.handle(mux, "GET /api/cart", "cart", h.Cart)
	h.handle(mux, "DELETE /api/cart", "cart_clear", h.ClearCart)
	h.handle(mux, "POST /api/cart/items", "cart_add", h.AddItem)
	h.handle(mux, "PATCH /api/cart/items/{id}", "cart_change", h.ChangeQuantity)
	h.handle(mux, "DELETE /api/cart/items/{id}", "cart_remove", h.RemoveItem)
	h.handle(mux, "POST /api/checkout", "checkout", h.Checkout)
}

func (h *HTTPHandler) handle(mux *http.ServeMux, pattern, name string, fn http.HandlerFunc) {
	if h.metrics == nil {
		mux.HandleFunc(pattern, fn)
		return
	}
	mux.HandleFunc(pattern, h.metrics.Instrument(name, func(w http.ResponseWriter, r *http.Request) {
		fn(w, r)
		h.metrics.CartItems.Set(float64(h.binder.CartCount()))
	}))
}

func (h *HTTPHandler) Products(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.binder.ProductGrid())
}

func (h *HTTPHandler) RefreshProducts(w http.ResponseWriter, r *http.Request) {
	if err := h.binder.LoadCatalog(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, h.binder.ProductGrid())
		return
	}
	writeJSON(w, http.StatusOK, h.binder.ProductGrid())
}

func (h *HTTPHandler) Cart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.binder.CartPage())
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.binder.ClearCart(r.Context()))
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	grid, err := h.binder.AddToCart(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		message := "internal error"

		if errors.Is(err, ErrUnknownProduct) {
			status = http.StatusNotFound
			message = "unknown product"
		} else if errors.Is(err, service.ErrInvalidID) {
			status = http.StatusBadRequest
			message = "missing product id"
		}

		writeJSON(w, status, ErrorHTTPResponse{
			Success: false,
			Message: message,
		})
		return
	}

	writeJSON(w, http.StatusOK, grid)
}

func (h *HTTPHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	var req ChangeQuantityHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{
			Success: false,
			Message: "delta must be an integer",
		})
		return
	}

	writeJSON(w, http.StatusOK, h.binder.ChangeQuantity(r.Context(), r.PathValue("id"), req.Delta))
}

func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.binder.RemoveFromCart(r.Context(), r.PathValue("id")))
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.binder.Checkout(r.Context()))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	storage := "ok"
	if h.store.Degraded() {
		storage = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "storage": storage})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

// CartHandler exposes the cart store over HTTP. It also keeps the badge
// counter, fed by the store's subscription mechanism instead of polling.
type CartHandler struct {
	cart        *cart.Store
	badge       int64
	unsubscribe func()
}

func NewCartHandler(cartStore *cart.Store) *CartHandler {
	h := &CartHandler{cart: cartStore}
	atomic.StoreInt64(&h.badge, int64(cartStore.TotalItems()))
	h.unsubscribe = cartStore.Subscribe(func(totalItems int) {
		atomic.StoreInt64(&h.badge, int64(totalItems))
	})
	return h
}

// Close detaches the badge listener.
func (h *CartHandler) Close() {
	h.unsubscribe()
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items      []domain.CartLine `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice float64           `json:"total_price"`
}

type BadgeResponse struct {
	TotalItems int `json:"total_items"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) Badge(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, BadgeResponse{
		TotalItems: int(atomic.LoadInt64(&h.badge)),
	})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if product.ID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "id must be positive")
		return
	}
	if product.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must be non-negative")
		return
	}

	if err := h.cart.AddItem(r.Context(), product); err != nil {
		respondError(w, http.StatusInternalServerError, "persistence_failed", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusCreated, h.cartResponse())
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Quantity zero or less removes the line, so no lower bound is checked.
	if err := h.cart.UpdateQuantity(r.Context(), productID, req.Quantity); err != nil {
		respondError(w, http.StatusInternalServerError, "persistence_failed", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	if err := h.cart.RemoveItem(r.Context(), productID); err != nil {
		respondError(w, http.StatusInternalServerError, "persistence_failed", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "persistence_failed", "failed to clear cart")
		return
	}

	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) cartResponse() CartResponse {
	return CartResponse{
		Items:      h.cart.Items(),
		TotalItems: h.cart.TotalItems(),
		TotalPrice: h.cart.TotalPrice(),
	}
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productIDStr := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

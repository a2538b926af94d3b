package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fjod/go_storefront/internal/checkout"
)

type CheckoutHandler struct {
	checkout *checkout.Service
}

func NewCheckoutHandler(svc *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkout: svc}
}

type ValidationErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

// Submit validates the shipping form and places the order. The 201 response
// with a Location header is the navigation signal to the confirmation view;
// it is only sent when the order snapshot was persisted and the cart cleared.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var form checkout.ShippingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, fieldErrs, err := h.checkout.Submit(r.Context(), form)
	if len(fieldErrs) > 0 {
		respondJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{Errors: fieldErrs})
		return
	}
	if errors.Is(err, checkout.ErrEmptyCart) {
		respondError(w, http.StatusConflict, "empty_cart", "cannot check out an empty cart")
		return
	}
	if err != nil {
		log.Printf("checkout failed request_id = %v with error %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "checkout_failed", "failed to place order")
		return
	}

	w.Header().Set("Location", "/api/v1/orders/last")
	respondJSON(w, http.StatusCreated, order)
}

// LastOrder returns the persisted order snapshot for the confirmation view.
func (h *CheckoutHandler) LastOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.LastOrder(r.Context())
	if errors.Is(err, checkout.ErrNoOrder) {
		respondError(w, http.StatusNotFound, "not_found", "no order placed yet")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to read order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

package web

import (
	"net/http"

	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/domain"
)

type ProductHandler struct {
	loader *catalog.Loader
}

func NewProductHandler(loader *catalog.Loader) *ProductHandler {
	return &ProductHandler{loader: loader}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
	State    string           `json:"state"`
	Error    string           `json:"error,omitempty"`
}

// Get returns the served catalog together with its loading state. An error
// state can still carry stale products as fallback data.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	products, state, errMsg := h.loader.Snapshot()

	respondJSON(w, http.StatusOK, &ProductsResponse{
		Products: products,
		State:    state.String(),
		Error:    errMsg,
	})
}

// Refresh models the browser "online" event: it re-runs the full load
// sequence regardless of cache age.
func (h *ProductHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.loader.NotifyOnline()
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}

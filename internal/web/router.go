package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewRouter wires the presentation boundary: catalog read, cart read/mutate
// and validate-and-submit checkout.
func NewRouter(products *ProductHandler, carts *CartHandler, checkouts *CheckoutHandler, timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.Get)
			r.Post("/refresh", products.Refresh)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Get("/badge", carts.Badge)
			r.Post("/items", carts.AddItem)
			r.Put("/items/{product_id}", carts.UpdateQuantity)
			r.Delete("/items/{product_id}", carts.RemoveItem)
			r.Delete("/", carts.ClearCart)
		})
		r.Post("/checkout", checkouts.Submit)
		r.Get("/orders/last", checkouts.LastOrder)
	})

	return otelhttp.NewHandler(r, "storefront")
}

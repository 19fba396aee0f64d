package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(carts *CartHandler, checkouts *CheckoutHandler, orders *OrderHandler, products *ProductHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/cart/session", carts.NewSession)
		r.Get("/cart/{sessionId}", carts.GetCart)
		r.Post("/cart", carts.AddItem)
		r.Put("/cart/{itemId}", carts.UpdateItem)
		r.Delete("/cart/{itemId}", carts.RemoveItem)

		r.Post("/checkout", checkouts.Checkout)

		r.Get("/orders/{orderId}", orders.GetOrder)
		r.Get("/customers/{email}/orders", orders.ListCustomerOrders)

		r.Get("/products/{identifier}", products.GetProduct)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "storefront",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

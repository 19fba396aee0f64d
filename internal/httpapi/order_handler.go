package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rayaen-stack/drone-zone-ecommerce/internal/customer"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/order"
)

const ordersTimeout = 5 * time.Second

type OrderHandler struct {
	orders    order.Repository
	customers customer.Repository
}

func NewOrderHandler(orders order.Repository, customers customer.Repository) *OrderHandler {
	return &OrderHandler{orders: orders, customers: customers}
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ordersTimeout)
	defer cancel()

	o, err := h.orders.GetByID(ctx, orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch order")
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// ListCustomerOrders returns the order history for an email, newest first. An
// email the shop has never seen is a 404, matching the customer lookup.
func (h *OrderHandler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "missing email")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ordersTimeout)
	defer cancel()

	c, err := h.customers.GetByEmail(ctx, email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch customer")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}

	orders, err := h.orders.ListByCustomer(ctx, c.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch orders")
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

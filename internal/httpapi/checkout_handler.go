package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rayaen-stack/drone-zone-ecommerce/internal/checkout"
)

const checkoutTimeout = 10 * time.Second

type CheckoutRunner interface {
	Checkout(ctx context.Context, req checkout.Request) (*checkout.Result, error)
}

type CheckoutHandler struct {
	svc CheckoutRunner
}

func NewCheckoutHandler(svc CheckoutRunner) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid checkout data")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkoutTimeout)
	defer cancel()

	res, err := h.svc.Checkout(ctx, req)
	if err != nil {
		// Each failure category maps to its own status so the client can tell
		// "fix your input" from "payment declined" from "try again".
		switch {
		case errors.Is(err, checkout.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, checkout.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, checkout.ErrPaymentFailed):
			writeError(w, http.StatusPaymentRequired, err.Error())
		case errors.Is(err, checkout.ErrPersistence):
			writeError(w, http.StatusBadGateway, "order could not be saved, please retry")
		default:
			writeError(w, http.StatusInternalServerError, "failed to process checkout")
		}
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

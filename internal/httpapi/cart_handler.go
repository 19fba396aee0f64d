package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rayaen-stack/drone-zone-ecommerce/internal/cart"
)

const cartTimeout = 3 * time.Second

type CartHandler struct {
	repo cart.Repository
}

func NewCartHandler(repo cart.Repository) *CartHandler {
	return &CartHandler{repo: repo}
}

// NewSession mints an opaque token the client holds to identify its cart. No
// server-side record is created until the first add.
func (h *CartHandler) NewSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{
		"sessionId": uuid.NewString(),
	})
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cartTimeout)
	defer cancel()

	lines, err := h.repo.GetCart(ctx, sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch cart")
		return
	}

	writeJSON(w, http.StatusOK, lines)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"sessionId"`
		ProductID int64  `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid cart data")
		return
	}
	if body.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cartTimeout)
	defer cancel()

	lines, err := h.repo.AddItem(ctx, body.SessionID, body.ProductID, body.Quantity)
	if err != nil {
		writeCartError(w, err, "failed to add item to cart")
		return
	}

	writeJSON(w, http.StatusCreated, lines)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseItemID(w, r)
	if !ok {
		return
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid data")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cartTimeout)
	defer cancel()

	line, err := h.repo.UpdateQuantity(ctx, itemID, body.Quantity)
	if err != nil {
		writeCartError(w, err, "failed to update cart item")
		return
	}

	writeJSON(w, http.StatusOK, line)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseItemID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cartTimeout)
	defer cancel()

	lines, err := h.repo.RemoveItem(ctx, itemID)
	if err != nil {
		writeCartError(w, err, "failed to remove item from cart")
		return
	}

	writeJSON(w, http.StatusOK, lines)
}

func parseItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "itemId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return 0, false
	}
	return id, true
}

func writeCartError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, cart.ErrLineNotFound):
		writeError(w, http.StatusNotFound, "cart item not found")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rayaen-stack/drone-zone-ecommerce/internal/catalog"
)

const productsTimeout = 3 * time.Second

type ProductHandler struct {
	repo catalog.Repository
}

func NewProductHandler(repo catalog.Repository) *ProductHandler {
	return &ProductHandler{repo: repo}
}

// GetProduct looks up a product by numeric id or, failing that, by slug.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	ctx, cancel := context.WithTimeout(r.Context(), productsTimeout)
	defer cancel()

	var (
		p   *catalog.Product
		err error
	)
	if id, convErr := strconv.ParseInt(identifier, 10, 64); convErr == nil {
		p, err = h.repo.GetByID(ctx, id)
	} else {
		p, err = h.repo.GetBySlug(ctx, identifier)
	}
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch product")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

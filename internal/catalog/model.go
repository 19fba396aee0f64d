package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is owned by the catalog side of the shop. The checkout pipeline only
// ever reads it: live prices at cart/quote time, a frozen copy on order items.
type Product struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice,omitempty"`
	ImageURL       string           `json:"imageUrl"`
	Stock          int              `json:"stock"`
	CategoryID     int64            `json:"categoryId"`
	Featured       bool             `json:"featured"`
	Slug           string           `json:"slug"`
	CreatedAt      time.Time        `json:"createdAt"`
}

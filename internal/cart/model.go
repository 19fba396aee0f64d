package cart

import (
	"time"

	"github.com/rayaen-stack/drone-zone-ecommerce/internal/catalog"
)

// Line binds one product to one anonymous session. Quantity is the only
// mutable field; the joined product snapshot always carries the live catalog
// price, never a frozen one.
type Line struct {
	ID        int64           `json:"id"`
	SessionID string          `json:"sessionId"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	CreatedAt time.Time       `json:"createdAt"`
	Product   catalog.Product `json:"product"`
}

package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rayaen-stack/drone-zone-ecommerce/internal/catalog"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/customer"
)

// Item freezes the unit price at checkout time. This is intentional: a later
// catalog price change must never rewrite an already-placed order.
type Item struct {
	ID        int64            `json:"id"`
	OrderID   int64            `json:"orderId"`
	ProductID int64            `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Product   *catalog.Product `json:"product,omitempty"`
}

type Order struct {
	ID              int64              `json:"orderId"`
	CustomerID      int64              `json:"customerId"`
	Customer        *customer.Customer `json:"customer,omitempty"`
	Status          Status             `json:"status"`
	ShippingAddress string             `json:"shippingAddress"`
	Total           decimal.Decimal    `json:"total"`
	Currency        string             `json:"currency"`
	PaymentMethod   string             `json:"paymentMethod"`
	PaymentStatus   PaymentStatus      `json:"paymentStatus"`
	CreatedAt       time.Time          `json:"createdAt"`
	Items           []Item             `json:"items"`
}

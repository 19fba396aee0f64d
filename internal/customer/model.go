package customer

import "time"

// Customer is keyed by email: the shop recognizes returning buyers without
// authentication, and the latest checkout's shipping details always win.
type Customer struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zipCode"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

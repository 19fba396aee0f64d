package order

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// StatusForPayment derives the order status at creation time: an order is
// "processing" exactly when its payment completed, otherwise it waits.
func StatusForPayment(ps PaymentStatus) Status {
	if ps == PaymentCompleted {
		return StatusProcessing
	}
	return StatusPending
}

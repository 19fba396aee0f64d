package checkout

import "errors"

var (
	// ErrValidation covers malformed input caught before any side effect.
	ErrValidation = errors.New("invalid checkout data")
	// ErrEmptyCart means there was nothing to check out; no order was created.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPaymentFailed means the payment simulator rejected the attempt. No
	// order or item rows were written; the buyer must resubmit payment details.
	ErrPaymentFailed = errors.New("payment failed")
	// ErrPersistence means a write failed after any payment already succeeded.
	// The cart is left intact so the same checkout can be retried.
	ErrPersistence = errors.New("order could not be saved")
)

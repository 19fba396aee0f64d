// Package checkout sequences the cart-to-order pipeline: resolve cart, quote
// totals, upsert the customer, simulate payment, materialize the order, clear
// the cart. It is the only writer of customers, orders and order items.
package checkout

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rayaen-stack/drone-zone-ecommerce/internal/cart"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/customer"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/order"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/payment"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/pricing"
)

type CartStore interface {
	GetCart(ctx context.Context, sessionID string) ([]cart.Line, error)
	ClearCart(ctx context.Context, sessionID string) error
}

type CustomerStore interface {
	UpsertByEmail(ctx context.Context, c *customer.Customer) error
}

type OrderStore interface {
	Create(ctx context.Context, o *order.Order) error
}

type PaymentInitiator interface {
	Initiate(ctx context.Context, amount decimal.Decimal, method payment.Method, det payment.Details) payment.Outcome
}

// EventPublisher receives the order after it has been persisted. Publishing is
// best effort; a broker outage never fails a paid checkout.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o *order.Order) error
}

type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Phone   string `json:"phone,omitempty"`
}

type PaymentInfo struct {
	Method payment.Method        `json:"method"`
	Card   *payment.CardDetails  `json:"cardDetails,omitempty"`
	Mpesa  *payment.MpesaDetails `json:"mpesaDetails,omitempty"`
}

type Request struct {
	SessionID string       `json:"sessionId"`
	Customer  CustomerInfo `json:"customerInfo"`
	Payment   *PaymentInfo `json:"paymentInfo,omitempty"`
}

type Result struct {
	OrderID        int64               `json:"orderId"`
	Status         order.Status        `json:"status"`
	Total          decimal.Decimal     `json:"total"`
	Currency       string              `json:"currency"`
	PaymentMethod  string              `json:"paymentMethod"`
	PaymentStatus  order.PaymentStatus `json:"paymentStatus"`
	PaymentDetails map[string]string   `json:"paymentDetails,omitempty"`
}

type Service struct {
	carts     CartStore
	customers CustomerStore
	orders    OrderStore
	payments  PaymentInitiator
	events    EventPublisher
	pricing   pricing.Config
	currency  string
	logger    *log.Logger
}

func NewService(
	carts CartStore,
	customers CustomerStore,
	orders OrderStore,
	payments PaymentInitiator,
	events EventPublisher,
	pricingCfg pricing.Config,
	currency string,
	logger *log.Logger,
) *Service {
	return &Service{
		carts:     carts,
		customers: customers,
		orders:    orders,
		payments:  payments,
		events:    events,
		pricing:   pricingCfg,
		currency:  currency,
		logger:    logger,
	}
}

// Checkout runs the whole pipeline. Failure ordering matters: validation and
// the empty-cart check run before any write, payment runs before the order
// exists, and the cart survives a persistence failure so the buyer can retry
// without paying twice.
func (s *Service) Checkout(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	lines, err := s.carts.GetCart(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	// Totals are computed exactly once from live catalog prices. The same
	// settlement amount goes to the payment simulator and onto the order row.
	amounts := make([]pricing.LineAmount, len(lines))
	for i, l := range lines {
		amounts[i] = pricing.LineAmount{UnitPrice: l.Product.Price, Quantity: l.Quantity}
	}
	quote := pricing.Compute(amounts, s.pricing)

	cust := &customer.Customer{
		Email:   req.Customer.Email,
		Name:    req.Customer.Name,
		Address: req.Customer.Address,
		City:    req.Customer.City,
		State:   req.Customer.State,
		ZipCode: req.Customer.ZipCode,
		Phone:   req.Customer.Phone,
	}
	// Runs before payment: a failure here aborts the checkout with nothing
	// charged and nothing written beyond the profile row itself.
	if err := s.customers.UpsertByEmail(ctx, cust); err != nil {
		return nil, fmt.Errorf("upsert customer: %w", err)
	}

	outcome := s.initiatePayment(ctx, quote.Total, req.Payment)
	if outcome.Status == payment.StatusFailed {
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, outcome.Reason)
	}

	o := &order.Order{
		CustomerID:      cust.ID,
		Status:          order.StatusForPayment(order.PaymentStatus(outcome.Status)),
		ShippingAddress: shippingAddress(req.Customer),
		Total:           quote.Total,
		Currency:        s.currency,
		PaymentMethod:   string(outcome.Method),
		PaymentStatus:   order.PaymentStatus(outcome.Status),
		Items:           make([]order.Item, len(lines)),
	}
	for i, l := range lines {
		o.Items[i] = order.Item{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Product.Price, // snapshot, frozen from here on
		}
	}

	if err := s.orders.Create(ctx, o); err != nil {
		// The payment receipt is still valid; the caller may retry persistence
		// without resubmitting payment details. The cart stays intact.
		return nil, fmt.Errorf("%w: create order: %v", ErrPersistence, err)
	}

	if err := s.carts.ClearCart(ctx, req.SessionID); err != nil {
		// The order exists; an uncleared cart is an annoyance, not a failure.
		s.logger.Printf("checkout: order %d created but cart %q not cleared: %v", o.ID, req.SessionID, err)
	}

	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, o); err != nil {
			s.logger.Printf("checkout: publish OrderCreated for order %d: %v", o.ID, err)
		}
	}

	return &Result{
		OrderID:        o.ID,
		Status:         o.Status,
		Total:          o.Total,
		Currency:       o.Currency,
		PaymentMethod:  o.PaymentMethod,
		PaymentStatus:  o.PaymentStatus,
		PaymentDetails: outcome.Details,
	}, nil
}

func (s *Service) initiatePayment(ctx context.Context, total decimal.Decimal, info *PaymentInfo) payment.Outcome {
	if info == nil {
		return s.payments.Initiate(ctx, total, payment.MethodUnknown, payment.Details{})
	}
	return s.payments.Initiate(ctx, total, info.Method, payment.Details{
		Card:  info.Card,
		Mpesa: info.Mpesa,
	})
}

func shippingAddress(c CustomerInfo) string {
	return fmt.Sprintf("%s, %s, %s %s", c.Address, c.City, c.State, c.ZipCode)
}

func validateRequest(req Request) error {
	if req.SessionID == "" {
		return fmt.Errorf("%w: sessionId is required", ErrValidation)
	}

	// Absent payment info is allowed and produces a pending order; a present
	// but unrecognized method is a client error, not a silent pending order.
	if req.Payment != nil {
		switch req.Payment.Method {
		case payment.MethodCard, payment.MethodMpesa, payment.MethodBank, payment.MethodPaypal:
		default:
			return fmt.Errorf("%w: unsupported payment method %q", ErrValidation, req.Payment.Method)
		}
	}

	c := req.Customer
	switch {
	case len(strings.TrimSpace(c.Name)) < 2:
		return fmt.Errorf("%w: name must be at least 2 characters", ErrValidation)
	case !strings.Contains(c.Email, "@"):
		return fmt.Errorf("%w: email is invalid", ErrValidation)
	case len(strings.TrimSpace(c.Address)) < 5:
		return fmt.Errorf("%w: address must be at least 5 characters", ErrValidation)
	case len(strings.TrimSpace(c.City)) < 2:
		return fmt.Errorf("%w: city must be at least 2 characters", ErrValidation)
	case len(strings.TrimSpace(c.State)) < 2:
		return fmt.Errorf("%w: state must be at least 2 characters", ErrValidation)
	case len(strings.TrimSpace(c.ZipCode)) < 5:
		return fmt.Errorf("%w: zip code must be at least 5 characters", ErrValidation)
	}

	return nil
}

package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayaen-stack/drone-zone-ecommerce/internal/cart"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/catalog"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/customer"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/order"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/payment"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/pricing"
)

type cartStoreMock struct {
	GetCartFunc   func(ctx context.Context, sessionID string) ([]cart.Line, error)
	ClearCartFunc func(ctx context.Context, sessionID string) error
	cleared       []string
}

func (m *cartStoreMock) GetCart(ctx context.Context, sessionID string) ([]cart.Line, error) {
	return m.GetCartFunc(ctx, sessionID)
}

func (m *cartStoreMock) ClearCart(ctx context.Context, sessionID string) error {
	m.cleared = append(m.cleared, sessionID)
	if m.ClearCartFunc != nil {
		return m.ClearCartFunc(ctx, sessionID)
	}
	return nil
}

type customerStoreMock struct {
	UpsertFunc func(ctx context.Context, c *customer.Customer) error
	upserted   []*customer.Customer
}

func (m *customerStoreMock) UpsertByEmail(ctx context.Context, c *customer.Customer) error {
	m.upserted = append(m.upserted, c)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, c)
	}
	c.ID = 7
	return nil
}

type orderStoreMock struct {
	CreateFunc func(ctx context.Context, o *order.Order) error
	created    []*order.Order
}

func (m *orderStoreMock) Create(ctx context.Context, o *order.Order) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, o); err != nil {
			return err
		}
	} else {
		o.ID = 42
	}
	m.created = append(m.created, o)
	return nil
}

type publisherMock struct {
	published []*order.Order
	err       error
}

func (m *publisherMock) PublishOrderCreated(ctx context.Context, o *order.Order) error {
	m.published = append(m.published, o)
	return m.err
}

func testPricing() pricing.Config {
	return pricing.Config{
		TaxRate:      decimal.RequireFromString("0.16"),
		ShippingFlat: decimal.Zero,
		FXRate:       decimal.NewFromInt(130),
	}
}

func oneLineCart() []cart.Line {
	return []cart.Line{
		{
			ID:        1,
			SessionID: "sess-1",
			ProductID: 5,
			Quantity:  1,
			Product:   catalog.Product{ID: 5, Name: "Phantom X Drone", Price: decimal.RequireFromString("999.99"), Stock: 3},
		},
	}
}

func validRequest(method payment.Method) Request {
	req := Request{
		SessionID: "sess-1",
		Customer: CustomerInfo{
			Name:    "Jane Buyer",
			Email:   "jane@example.com",
			Address: "12 Riverside Drive",
			City:    "Nairobi",
			State:   "Nairobi",
			ZipCode: "00100",
			Phone:   "254712345678",
		},
	}
	if method != "" {
		req.Payment = &PaymentInfo{Method: method}
	}
	return req
}

func newTestService(carts *cartStoreMock, customers *customerStoreMock, orders *orderStoreMock, events EventPublisher) *Service {
	sim := payment.NewSimulator(true, 0, 0)
	logger := log.New(io.Discard, "", 0)
	return NewService(carts, customers, orders, sim, events, testPricing(), "KES", logger)
}

func TestCheckout_BankTransferHappyPath(t *testing.T) {
	carts := &cartStoreMock{GetCartFunc: func(ctx context.Context, sessionID string) ([]cart.Line, error) {
		return oneLineCart(), nil
	}}
	customers := &customerStoreMock{}
	orders := &orderStoreMock{}
	events := &publisherMock{}

	svc := newTestService(carts, customers, orders, events)
	res, err := svc.Checkout(context.Background(), validRequest(payment.MethodBank))
	require.NoError(t, err)

	assert.Equal(t, int64(42), res.OrderID)
	assert.Equal(t, order.StatusProcessing, res.Status)
	assert.Equal(t, order.PaymentCompleted, res.PaymentStatus)
	assert.Equal(t, "bank", res.PaymentMethod)
	assert.True(t, res.Total.Equal(decimal.RequireFromString("150798.49")), "total: %s", res.Total)
	assert.Equal(t, "KES", res.Currency)
	assert.Equal(t, "Kenya Commercial Bank (KCB)", res.PaymentDetails["bankName"])

	require.Len(t, orders.created, 1)
	created := orders.created[0]
	assert.Equal(t, int64(7), created.CustomerID)
	assert.Equal(t, "12 Riverside Drive, Nairobi, Nairobi 00100", created.ShippingAddress)
	require.Len(t, created.Items, 1)
	assert.True(t, created.Items[0].Price.Equal(decimal.RequireFromString("999.99")))

	assert.Equal(t, []string{"sess-1"}, carts.cleared)
	require.Len(t, events.published, 1)
}

func TestCheckout_EmptyCart(t *testing.T) {
	carts := &cartStoreMock{GetCartFunc: func(ctx context.Context, sessionID string) ([]cart.Line, error) {
		return []cart.Line{}, nil
	}}
	orders := &orderStoreMock{}

	svc := newTestService(carts, &customerStoreMock{}, orders, nil)
	_, err := svc.Checkout(context.Background(), validRequest(payment.MethodBank))

	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, orders.created)
	assert.Empty(t, carts.cleared)
}

func TestCheckout_PaymentFailureWritesNothing(t *testing.T) {
	carts := &cartStoreMock{GetCartFunc: func(ctx context.Context, sessionID string) ([]cart.Line, error) {
		return oneLineCart(), nil
	}}
	orders := &orderStoreMock{}

	svc := newTestService(carts, &customerStoreMock{}, orders, nil)
	req := validRequest(payment.MethodMpesa)
	req.Payment.Mpesa = &payment.MpesaDetails{Phone: "12345"}

	_, err := svc.Checkout(context.Background(), req)

	require.ErrorIs(t, err, ErrPaymentFailed)
	assert.Empty(t, orders.created, "no order may exist after a failed payment")
	assert.Empty(t, carts.cleared, "cart must survive a failed payment")
}

func TestCheckout_PersistenceFailureKeepsCart(t *testing.T) {
	carts := &cartStoreMock{GetCartFunc: func(ctx context.Context, sessionID string) ([]cart.Line, error) {
		return oneLineCart(), nil
	}}
	orders := &orderStoreMock{CreateFunc: func(ctx context.Context, o *order.Order) error {
		return errors.New("disk on fire")
	}}

	svc := newTestService(carts, &customerStoreMock{}, orders, nil)
	_, err := svc.Checkout(context.Background(), validRequest(payment.MethodCard))

	// distinct from a payment failure so the client can retry persistence
	// with the same receipt
	require.ErrorIs(t, err, ErrPersistence)
	require.NotErrorIs(t, err, ErrPaymentFailed)
	assert.Empty(t, carts.cleared, "cart must stay intact when the order write fails")
}

func TestCheckout_CardPaymentRequiresFields(t *testing.T) {
	carts := &cartStoreMock{GetCartFunc: func(ctx context.Context, sessionID string) ([]cart.Line, error) {
		return oneLineCart(), nil
	}}
	svc := newTestService(carts, &customerStoreMock{}, &orderStoreMock{}, nil)

	req := validRequest(payment.MethodCard)
	req.Payment.Card = &payment.CardDetails{Number: "4242424242424242"}

	_, err := svc.Checkout(context.Background(), req)
	require.ErrorIs(t, err, ErrPaymentFailed)
}

func TestCheckout_NoPaymentInfoCreatesPendingOrder(t *testing.T) {
	carts := &cartStoreMock{GetCartFunc: func(ctx context.Context, sessionID string) ([]cart.Line, error) {
		return oneLineCart(), nil
	}}
	orders := &orderStoreMock{}

	svc := newTestService(carts, &customerStoreMock{}, orders, nil)
	res, err := svc.Checkout(context.Background(), validRequest(""))
	require.NoError(t, err)

	assert.Equal(t, order.StatusPending, res.Status)
	assert.Equal(t, order.PaymentPending, res.PaymentStatus)
	assert.Equal(t, "unknown", res.PaymentMethod)
	assert.Equal(t, []string{"sess-1"}, carts.cleared)
}

func TestCheckout_UnrecognizedMethodIsRejected(t *testing.T) {
	carts := &cartStoreMock{GetCartFunc: func(ctx context.Context, sessionID string) ([]cart.Line, error) {
		return oneLineCart(), nil
	}}
	orders := &orderStoreMock{}

	svc := newTestService(carts, &customerStoreMock{}, orders, nil)

	// A typo'd or unsupported method must not fall through to a pending
	// order; only absent payment info does that.
	for _, method := range []payment.Method{"bitcoin", "mpessa", "cash"} {
		_, err := svc.Checkout(context.Background(), validRequest(method))
		require.ErrorIs(t, err, ErrValidation, "method %q", method)
	}

	assert.Empty(t, orders.created)
	assert.Empty(t, carts.cleared, "cart must survive a rejected method")
}

func TestCheckout_CustomerUpsertTakesLatestProfile(t *testing.T) {
	carts := &cartStoreMock{GetCartFunc: func(ctx context.Context, sessionID string) ([]cart.Line, error) {
		return oneLineCart(), nil
	}}
	customers := &customerStoreMock{}

	svc := newTestService(carts, customers, &orderStoreMock{}, nil)
	_, err := svc.Checkout(context.Background(), validRequest(payment.MethodPaypal))
	require.NoError(t, err)

	require.Len(t, customers.upserted, 1)
	assert.Equal(t, "jane@example.com", customers.upserted[0].Email)
	assert.Equal(t, "Nairobi", customers.upserted[0].City)
}

func TestCheckout_ValidationRejectsBeforeAnySideEffect(t *testing.T) {
	carts := &cartStoreMock{GetCartFunc: func(ctx context.Context, sessionID string) ([]cart.Line, error) {
		t.Fatal("cart must not be read for an invalid request")
		return nil, nil
	}}
	customers := &customerStoreMock{}

	svc := newTestService(carts, customers, &orderStoreMock{}, nil)

	req := validRequest(payment.MethodBank)
	req.Customer.Email = "not-an-email"

	_, err := svc.Checkout(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, customers.upserted)
}

func TestCheckout_PublishFailureDoesNotFailCheckout(t *testing.T) {
	carts := &cartStoreMock{GetCartFunc: func(ctx context.Context, sessionID string) ([]cart.Line, error) {
		return oneLineCart(), nil
	}}
	events := &publisherMock{err: errors.New("broker down")}

	svc := newTestService(carts, &customerStoreMock{}, &orderStoreMock{}, events)
	res, err := svc.Checkout(context.Background(), validRequest(payment.MethodBank))

	require.NoError(t, err)
	assert.Equal(t, int64(42), res.OrderID)
}

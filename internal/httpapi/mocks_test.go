package httpapi_test

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rayaen-stack/drone-zone-ecommerce/internal/cart"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/catalog"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/checkout"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/customer"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/order"
)

// withURLParam attaches a chi route parameter to a request built outside a
// router, so handlers can be exercised directly.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type cartRepoMock struct {
	AddItemFunc        func(ctx context.Context, sessionID string, productID int64, quantity int) ([]cart.Line, error)
	UpdateQuantityFunc func(ctx context.Context, lineID int64, quantity int) (*cart.Line, error)
	RemoveItemFunc     func(ctx context.Context, lineID int64) ([]cart.Line, error)
	GetCartFunc        func(ctx context.Context, sessionID string) ([]cart.Line, error)
	ClearCartFunc      func(ctx context.Context, sessionID string) error
	DeleteStaleFunc    func(ctx context.Context, olderThan time.Duration) (int64, error)
}

func (m *cartRepoMock) AddItem(ctx context.Context, sessionID string, productID int64, quantity int) ([]cart.Line, error) {
	return m.AddItemFunc(ctx, sessionID, productID, quantity)
}

func (m *cartRepoMock) UpdateQuantity(ctx context.Context, lineID int64, quantity int) (*cart.Line, error) {
	return m.UpdateQuantityFunc(ctx, lineID, quantity)
}

func (m *cartRepoMock) RemoveItem(ctx context.Context, lineID int64) ([]cart.Line, error) {
	return m.RemoveItemFunc(ctx, lineID)
}

func (m *cartRepoMock) GetCart(ctx context.Context, sessionID string) ([]cart.Line, error) {
	return m.GetCartFunc(ctx, sessionID)
}

func (m *cartRepoMock) ClearCart(ctx context.Context, sessionID string) error {
	return m.ClearCartFunc(ctx, sessionID)
}

func (m *cartRepoMock) DeleteStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	return m.DeleteStaleFunc(ctx, olderThan)
}

type checkoutRunnerMock struct {
	CheckoutFunc func(ctx context.Context, req checkout.Request) (*checkout.Result, error)
}

func (m *checkoutRunnerMock) Checkout(ctx context.Context, req checkout.Request) (*checkout.Result, error) {
	return m.CheckoutFunc(ctx, req)
}

type orderRepoMock struct {
	CreateFunc         func(ctx context.Context, o *order.Order) error
	GetByIDFunc        func(ctx context.Context, orderID int64) (*order.Order, error)
	ListByCustomerFunc func(ctx context.Context, customerID int64) ([]order.Order, error)
}

func (m *orderRepoMock) Create(ctx context.Context, o *order.Order) error {
	return m.CreateFunc(ctx, o)
}

func (m *orderRepoMock) GetByID(ctx context.Context, orderID int64) (*order.Order, error) {
	return m.GetByIDFunc(ctx, orderID)
}

func (m *orderRepoMock) ListByCustomer(ctx context.Context, customerID int64) ([]order.Order, error) {
	return m.ListByCustomerFunc(ctx, customerID)
}

type customerRepoMock struct {
	UpsertByEmailFunc func(ctx context.Context, c *customer.Customer) error
	GetByEmailFunc    func(ctx context.Context, email string) (*customer.Customer, error)
}

func (m *customerRepoMock) UpsertByEmail(ctx context.Context, c *customer.Customer) error {
	return m.UpsertByEmailFunc(ctx, c)
}

func (m *customerRepoMock) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return m.GetByEmailFunc(ctx, email)
}

type catalogRepoMock struct {
	GetByIDFunc   func(ctx context.Context, id int64) (*catalog.Product, error)
	GetBySlugFunc func(ctx context.Context, slug string) (*catalog.Product, error)
}

func (m *catalogRepoMock) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *catalogRepoMock) GetBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	return m.GetBySlugFunc(ctx, slug)
}

package services_test

import (
	"context"

	"storefront/internal/commerce"

	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of commerce.Backend.
type MockBackend struct {
	mock.Mock
}

func basketResult(args mock.Arguments) (*commerce.Basket, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.Basket), args.Error(1)
}

func (m *MockBackend) LoginGuest(ctx context.Context) (*commerce.TokenResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.TokenResponse), args.Error(1)
}

func (m *MockBackend) CreateBasket(ctx context.Context, token string) (*commerce.Basket, error) {
	return basketResult(m.Called(ctx, token))
}

func (m *MockBackend) GetBasket(ctx context.Context, token, basketID string) (*commerce.Basket, error) {
	return basketResult(m.Called(ctx, token, basketID))
}

func (m *MockBackend) AddItemsToBasket(ctx context.Context, token, basketID string, items []commerce.ProductItemRequest) (*commerce.Basket, error) {
	return basketResult(m.Called(ctx, token, basketID, items))
}

func (m *MockBackend) UpdateCustomerForBasket(ctx context.Context, token, basketID, email string) (*commerce.Basket, error) {
	return basketResult(m.Called(ctx, token, basketID, email))
}

func (m *MockBackend) UpdateShippingAddressForShipment(ctx context.Context, token, basketID, shipmentID string, address commerce.OrderAddress) (*commerce.Basket, error) {
	return basketResult(m.Called(ctx, token, basketID, shipmentID, address))
}

func (m *MockBackend) UpdateShippingMethodForShipment(ctx context.Context, token, basketID, shipmentID, shippingMethodID string) (*commerce.Basket, error) {
	return basketResult(m.Called(ctx, token, basketID, shipmentID, shippingMethodID))
}

func (m *MockBackend) GetShippingMethodsForShipment(ctx context.Context, token, basketID, shipmentID string) (*commerce.ShippingMethodResult, error) {
	args := m.Called(ctx, token, basketID, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.ShippingMethodResult), args.Error(1)
}

func (m *MockBackend) UpdateBillingAddressForBasket(ctx context.Context, token, basketID string, address commerce.OrderAddress) (*commerce.Basket, error) {
	return basketResult(m.Called(ctx, token, basketID, address))
}

func (m *MockBackend) AddPaymentInstrumentToBasket(ctx context.Context, token, basketID string, req commerce.PaymentInstrumentRequest) (*commerce.Basket, error) {
	return basketResult(m.Called(ctx, token, basketID, req))
}

func (m *MockBackend) CreateOrder(ctx context.Context, token, basketID string) (*commerce.Order, error) {
	args := m.Called(ctx, token, basketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.Order), args.Error(1)
}

func (m *MockBackend) GetOrder(ctx context.Context, token, orderNo string) (*commerce.Order, error) {
	args := m.Called(ctx, token, orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.Order), args.Error(1)
}

func (m *MockBackend) GetProduct(ctx context.Context, token, productID string) (*commerce.Product, error) {
	args := m.Called(ctx, token, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.Product), args.Error(1)
}

// methods returns the names of the recorded calls in order.
func (m *MockBackend) methods() []string {
	names := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		names = append(names, c.Method)
	}
	return names
}

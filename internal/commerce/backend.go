// Package commerce is the boundary to the commerce backend: its raw API
// shapes, the reshaping into storefront models, and its clients.
package commerce

import "context"

// Backend is the commerce API surface checkout depends on. Every call is a
// plain request/response; token is the shopper's guest token.
type Backend interface {
	LoginGuest(ctx context.Context) (*TokenResponse, error)

	CreateBasket(ctx context.Context, token string) (*Basket, error)
	GetBasket(ctx context.Context, token, basketID string) (*Basket, error)
	AddItemsToBasket(ctx context.Context, token, basketID string, items []ProductItemRequest) (*Basket, error)
	UpdateCustomerForBasket(ctx context.Context, token, basketID, email string) (*Basket, error)
	UpdateShippingAddressForShipment(ctx context.Context, token, basketID, shipmentID string, address OrderAddress) (*Basket, error)
	UpdateShippingMethodForShipment(ctx context.Context, token, basketID, shipmentID, shippingMethodID string) (*Basket, error)
	GetShippingMethodsForShipment(ctx context.Context, token, basketID, shipmentID string) (*ShippingMethodResult, error)
	UpdateBillingAddressForBasket(ctx context.Context, token, basketID string, address OrderAddress) (*Basket, error)
	AddPaymentInstrumentToBasket(ctx context.Context, token, basketID string, req PaymentInstrumentRequest) (*Basket, error)

	CreateOrder(ctx context.Context, token, basketID string) (*Order, error)
	GetOrder(ctx context.Context, token, orderNo string) (*Order, error)

	GetProduct(ctx context.Context, token, productID string) (*Product, error)
}

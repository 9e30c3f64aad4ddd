// Package sandbox is a self-contained commerce backend persisted with GORM.
// It serves local development and the integration tests, and follows the
// same request/response contract as the remote commerce API.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront/internal/commerce"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	StatusCreated   = "created"
	StatusConfirmed = "confirmed"
)

// Options configures pricing and the API client identity of the sandbox.
type Options struct {
	ClientID     string
	ClientSecret string
	TaxRate      decimal.Decimal
	Currency     string
}

// Backend implements commerce.Backend on top of the repositories.
type Backend struct {
	auth     *services.GuestAuthService
	store    repositories.Store
	baskets  repositories.BasketRepository
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	opts     Options
	methods  []commerce.ShippingMethod
	log      *zap.Logger

	// serializes read-modify-write cycles on basket documents
	mu sync.Mutex
}

var _ commerce.Backend = (*Backend)(nil)

// NewBackend creates a sandbox backend.
func NewBackend(
	auth *services.GuestAuthService,
	store repositories.Store,
	opts Options,
	log *zap.Logger,
) *Backend {
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	if log == nil {
		log = zap.NewNop()
	}
	repos := store.Repositories()
	return &Backend{
		auth:     auth,
		store:    store,
		baskets:  repos.Baskets,
		orders:   repos.Orders,
		products: repos.Products,
		opts:     opts,
		methods:  DefaultShippingMethods(opts.Currency),
		log:      log,
	}
}

// DefaultShippingMethodID is preselected on the shipping page.
const DefaultShippingMethodID = "001"

// DefaultShippingMethods lists the methods applicable to every shipment.
func DefaultShippingMethods(currency string) []commerce.ShippingMethod {
	price := func(f float64) *float64 { return &f }
	return []commerce.ShippingMethod{
		{ID: "001", Name: "Ground", Description: "Order received within 7-10 business days", Price: price(5.99), CurrencyCode: currency},
		{ID: "002", Name: "2-Day Express", Description: "Order received in 2 business days", Price: price(9.99), CurrencyCode: currency},
		{ID: "003", Name: "Overnight", Description: "Order received the next business day", Price: price(15.99), CurrencyCode: currency},
	}
}

func (b *Backend) LoginGuest(ctx context.Context) (*commerce.TokenResponse, error) {
	resp, err := b.auth.LoginGuest(b.opts.ClientID, b.opts.ClientSecret)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return nil, commerce.NewResponseError(http.StatusUnauthorized, "Client credentials are invalid")
		}
		return nil, err
	}
	return resp, nil
}

func (b *Backend) authorize(token string) (string, error) {
	customerID, err := b.auth.ValidateToken(token)
	if err != nil {
		return "", commerce.NewResponseError(http.StatusUnauthorized, "Guest token is invalid or has expired")
	}
	return customerID, nil
}

func basketNotFound(id string) error {
	return commerce.NewResponseError(http.StatusNotFound, fmt.Sprintf("Basket %s was not found", id))
}

func badRequest(format string, args ...any) error {
	return commerce.NewResponseError(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

// load fetches a basket owned by the token's shopper. Baskets of other
// shoppers are reported as missing.
func (b *Backend) load(token, basketID string) (*repositories.BasketRecord, error) {
	customerID, err := b.authorize(token)
	if err != nil {
		return nil, err
	}
	record, err := b.baskets.GetByID(basketID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, basketNotFound(basketID)
		}
		return nil, err
	}
	if record.OwnerID != customerID {
		return nil, basketNotFound(basketID)
	}
	return record, nil
}

// mutate applies fn to a basket, reprices it, and stores the result.
func (b *Backend) mutate(ctx context.Context, token, basketID string, fn func(*commerce.Basket) error) (*commerce.Basket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	record, err := b.load(token, basketID)
	if err != nil {
		return nil, err
	}
	if err := fn(&record.Basket); err != nil {
		return nil, err
	}
	b.reprice(&record.Basket)
	if err := b.baskets.Update(record); err != nil {
		return nil, fmt.Errorf("failed to store basket %s: %w", basketID, err)
	}
	return &record.Basket, nil
}

func (b *Backend) CreateBasket(ctx context.Context, token string) (*commerce.Basket, error) {
	customerID, err := b.authorize(token)
	if err != nil {
		return nil, err
	}
	record := &repositories.BasketRecord{
		OwnerID: customerID,
		Basket: commerce.Basket{
			Currency:     b.opts.Currency,
			CustomerInfo: &commerce.CustomerInfo{CustomerID: customerID},
			Shipments:    []commerce.Shipment{{ShipmentID: commerce.DefaultShipmentID}},
		},
	}
	if err := b.baskets.Create(record); err != nil {
		return nil, err
	}
	b.log.Info("basket created", zap.String("basket_id", record.ID))
	return &record.Basket, nil
}

func (b *Backend) GetBasket(ctx context.Context, token, basketID string) (*commerce.Basket, error) {
	record, err := b.load(token, basketID)
	if err != nil {
		return nil, err
	}
	return &record.Basket, nil
}

func (b *Backend) AddItemsToBasket(ctx context.Context, token, basketID string, items []commerce.ProductItemRequest) (*commerce.Basket, error) {
	return b.mutate(ctx, token, basketID, func(basket *commerce.Basket) error {
		for _, req := range items {
			if req.Quantity <= 0 {
				return badRequest("Quantity for product %s must be greater than zero", req.ProductID)
			}
			product, err := b.products.GetByID(req.ProductID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return badRequest("Product %s was not found", req.ProductID)
				}
				return err
			}

			idx := -1
			for i, item := range basket.ProductItems {
				if item.ProductID == req.ProductID {
					idx = i
					break
				}
			}
			quantity := req.Quantity
			if idx >= 0 {
				quantity += basket.ProductItems[idx].Quantity
			}
			if quantity > product.Stock {
				return badRequest("Only %d of %s are in stock", product.Stock, product.Name)
			}

			unit := product.Price.InexactFloat64()
			line := product.Price.Mul(decimal.NewFromInt(int64(quantity))).InexactFloat64()
			if idx >= 0 {
				basket.ProductItems[idx].Quantity = quantity
				basket.ProductItems[idx].Price = line
				continue
			}
			basket.ProductItems = append(basket.ProductItems, commerce.ProductItem{
				ItemID:      uuid.New().String(),
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    quantity,
				BasePrice:   unit,
				Price:       line,
			})
		}
		return nil
	})
}

func (b *Backend) UpdateCustomerForBasket(ctx context.Context, token, basketID, email string) (*commerce.Basket, error) {
	return b.mutate(ctx, token, basketID, func(basket *commerce.Basket) error {
		if strings.TrimSpace(email) == "" {
			return badRequest("Customer email is required")
		}
		if basket.CustomerInfo == nil {
			basket.CustomerInfo = &commerce.CustomerInfo{}
		}
		basket.CustomerInfo.Email = email
		return nil
	})
}

func findShipment(basket *commerce.Basket, shipmentID string) (*commerce.Shipment, error) {
	for i := range basket.Shipments {
		if basket.Shipments[i].ShipmentID == shipmentID {
			return &basket.Shipments[i], nil
		}
	}
	return nil, commerce.NewResponseError(http.StatusNotFound, fmt.Sprintf("Shipment %s was not found", shipmentID))
}

func checkAddress(a commerce.OrderAddress) error {
	if a.Address1 == "" || a.City == "" || a.PostalCode == "" || a.CountryCode == "" {
		return badRequest("Address is incomplete")
	}
	return nil
}

func (b *Backend) UpdateShippingAddressForShipment(ctx context.Context, token, basketID, shipmentID string, address commerce.OrderAddress) (*commerce.Basket, error) {
	return b.mutate(ctx, token, basketID, func(basket *commerce.Basket) error {
		shipment, err := findShipment(basket, shipmentID)
		if err != nil {
			return err
		}
		if err := checkAddress(address); err != nil {
			return err
		}
		shipment.ShippingAddress = &address
		return nil
	})
}

func (b *Backend) UpdateShippingMethodForShipment(ctx context.Context, token, basketID, shipmentID, shippingMethodID string) (*commerce.Basket, error) {
	return b.mutate(ctx, token, basketID, func(basket *commerce.Basket) error {
		shipment, err := findShipment(basket, shipmentID)
		if err != nil {
			return err
		}
		for _, m := range b.methods {
			if m.ID == shippingMethodID {
				method := m
				shipment.ShippingMethod = &method
				return nil
			}
		}
		return badRequest("Shipping method %s is not applicable to this shipment", shippingMethodID)
	})
}

func (b *Backend) GetShippingMethodsForShipment(ctx context.Context, token, basketID, shipmentID string) (*commerce.ShippingMethodResult, error) {
	record, err := b.load(token, basketID)
	if err != nil {
		return nil, err
	}
	if _, err := findShipment(&record.Basket, shipmentID); err != nil {
		return nil, err
	}
	methods := make([]commerce.ShippingMethod, len(b.methods))
	copy(methods, b.methods)
	return &commerce.ShippingMethodResult{
		DefaultShippingMethodID:   DefaultShippingMethodID,
		ApplicableShippingMethods: methods,
	}, nil
}

func (b *Backend) UpdateBillingAddressForBasket(ctx context.Context, token, basketID string, address commerce.OrderAddress) (*commerce.Basket, error) {
	return b.mutate(ctx, token, basketID, func(basket *commerce.Basket) error {
		if err := checkAddress(address); err != nil {
			return err
		}
		basket.BillingAddress = &address
		return nil
	})
}

// AddPaymentInstrumentToBasket replaces any earlier instrument. Only masked
// card numbers are accepted.
func (b *Backend) AddPaymentInstrumentToBasket(ctx context.Context, token, basketID string, req commerce.PaymentInstrumentRequest) (*commerce.Basket, error) {
	return b.mutate(ctx, token, basketID, func(basket *commerce.Basket) error {
		if req.PaymentMethodID == "" {
			return badRequest("Payment method is required")
		}
		if len(commerce.StripCardFormatting(req.PaymentCard.MaskedNumber)) > 4 {
			return badRequest("Card number must be masked")
		}
		if req.PaymentCard.ExpirationMonth < 1 || req.PaymentCard.ExpirationMonth > 12 {
			return badRequest("Card expiration month is invalid")
		}
		card := req.PaymentCard
		basket.PaymentInstruments = []commerce.PaymentInstrument{{
			PaymentInstrumentID: uuid.New().String(),
			PaymentMethodID:     req.PaymentMethodID,
			Amount:              req.Amount,
			PaymentCard:         &card,
		}}
		return nil
	})
}

// CreateOrder turns a complete basket into an order and removes the basket.
// A basket without a billing address is billed to its shipping address.
func (b *Backend) CreateOrder(ctx context.Context, token, basketID string) (*commerce.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	record, err := b.load(token, basketID)
	if err != nil {
		return nil, err
	}
	basket := record.Basket
	if err := checkOrderable(&basket); err != nil {
		return nil, err
	}
	if basket.BillingAddress == nil {
		billing := *basket.Shipments[0].ShippingAddress
		basket.BillingAddress = &billing
	}

	order := &repositories.OrderRecord{
		OwnerID: record.OwnerID,
		Status:  StatusCreated,
		Order: commerce.Order{
			Basket:       basket,
			CreationDate: time.Now().UTC(),
		},
	}
	err = b.store.Transaction(func(tx repositories.Repositories) error {
		if err := reserveStock(tx.Products, basket.ProductItems); err != nil {
			return err
		}
		if err := tx.Orders.Create(order); err != nil {
			return err
		}
		return tx.Baskets.Delete(basketID)
	})
	if err != nil {
		return nil, err
	}
	b.log.Info("order created", zap.String("order_no", order.OrderNo), zap.String("basket_id", basketID))
	return &order.Order, nil
}

func checkOrderable(basket *commerce.Basket) error {
	switch {
	case len(basket.ProductItems) == 0:
		return badRequest("Basket has no items")
	case basket.CustomerInfo == nil || basket.CustomerInfo.Email == "":
		return badRequest("Customer email is required")
	case len(basket.Shipments) == 0 || basket.Shipments[0].ShippingAddress == nil:
		return badRequest("Shipping address is required")
	case basket.Shipments[0].ShippingMethod == nil:
		return badRequest("Shipping method is required")
	case len(basket.PaymentInstruments) == 0:
		return badRequest("Payment instrument is required")
	}
	return nil
}

// reserveStock takes the basket lines out of stock. A short line fails the
// whole reservation with a 409 naming the product.
func reserveStock(products repositories.ProductRepository, items []commerce.ProductItem) error {
	lines := make([]repositories.StockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, repositories.StockLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	err := products.ReserveStock(lines)
	var stockErr *repositories.StockError
	switch {
	case errors.As(err, &stockErr):
		return commerce.NewResponseError(http.StatusConflict, fmt.Sprintf("%s is no longer available in the requested quantity", stockErr.Name))
	case errors.Is(err, repositories.ErrNotFound):
		return badRequest("A product in the basket is no longer sold")
	}
	return err
}

func (b *Backend) GetOrder(ctx context.Context, token, orderNo string) (*commerce.Order, error) {
	customerID, err := b.authorize(token)
	if err != nil {
		return nil, err
	}
	record, err := b.orders.GetByID(orderNo)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, commerce.NewResponseError(http.StatusNotFound, fmt.Sprintf("Order %s was not found", orderNo))
		}
		return nil, err
	}
	if record.OwnerID != customerID {
		return nil, commerce.NewResponseError(http.StatusNotFound, fmt.Sprintf("Order %s was not found", orderNo))
	}
	return &record.Order, nil
}

// ConfirmOrder marks a placed order as confirmed once its event was handled.
func (b *Backend) ConfirmOrder(orderNo string) error {
	return b.orders.UpdateStatus(orderNo, StatusConfirmed)
}

func (b *Backend) GetProduct(ctx context.Context, token, productID string) (*commerce.Product, error) {
	product, err := b.products.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, commerce.NewResponseError(http.StatusNotFound, fmt.Sprintf("Product %s was not found", productID))
		}
		return nil, err
	}
	out := &commerce.Product{
		ID:                product.ID,
		Name:              product.Name,
		ShortDescription:  product.Description,
		PrimaryCategoryID: product.CategoryID,
		Currency:          product.Currency,
		Price:             product.Price.InexactFloat64(),
	}
	if product.ImageURL != "" {
		out.ImageGroups = []commerce.ImageGroup{{
			ViewType: "large",
			Images:   []commerce.ImageRef{{Alt: product.ImageAlt, Link: product.ImageURL}},
		}}
	}
	return out, nil
}

// reprice recomputes the basket totals. The order total is only known once
// a shipping method has been selected.
func (b *Backend) reprice(basket *commerce.Basket) {
	subtotal := decimal.Zero
	for _, item := range basket.ProductItems {
		subtotal = subtotal.Add(decimal.NewFromFloat(item.Price))
	}
	tax := subtotal.Mul(b.opts.TaxRate).Round(2)

	basket.ProductSubTotal = subtotal.InexactFloat64()
	basket.MerchandizeTotalTax = tax.InexactFloat64()
	basket.ShippingTotal = 0
	basket.OrderTotal = nil

	if len(basket.Shipments) == 0 || basket.Shipments[0].ShippingMethod == nil {
		return
	}
	shipping := decimal.Zero
	if price := basket.Shipments[0].ShippingMethod.Price; price != nil {
		shipping = decimal.NewFromFloat(*price)
	}
	total := subtotal.Add(tax).Add(shipping).InexactFloat64()
	basket.ShippingTotal = shipping.InexactFloat64()
	basket.OrderTotal = &total
}

package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"storefront/internal/cache"
	"storefront/internal/commerce"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCartService() (*services.CartService, *MockBackend) {
	backend := new(MockBackend)
	loader := cache.NewLoader(cache.NewMemoryCache(time.Minute), nil)
	return services.NewCartService(backend, loader, nil), backend
}

func price(f float64) *float64 { return &f }

var laptop = &commerce.Product{
	ID:   "prod-1",
	Name: "Laptop",
	ImageGroups: []commerce.ImageGroup{
		{ViewType: "large", Images: []commerce.ImageRef{{Link: "/images/laptop.jpg"}}},
	},
}

func basketWithItems() *commerce.Basket {
	return &commerce.Basket{
		BasketID:        "cart-1",
		Currency:        "USD",
		ProductSubTotal: 2400,
		ProductItems: []commerce.ProductItem{
			{ItemID: "i-1", ProductID: "prod-1", ProductName: "Laptop", Quantity: 2, Price: 2400},
		},
	}
}

func TestCartService_GetCart(t *testing.T) {
	svc, backend := newCartService()
	sess := models.NewSession("guest-token", "cart-1", "")

	backend.On("GetBasket", mock.Anything, "guest-token", "cart-1").Return(basketWithItems(), nil).Once()
	backend.On("GetProduct", mock.Anything, "guest-token", "prod-1").Return(laptop, nil).Once()

	cart, err := svc.GetCart(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.TotalQuantity)
	assert.Equal(t, "/images/laptop.jpg", cart.Lines[0].Merchandise.Product.FeaturedImage.URL)

	cached, err := svc.GetCart(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, cached.ID)
	backend.AssertExpectations(t)
}

func TestCartService_GetCart_CacheScopedToToken(t *testing.T) {
	svc, backend := newCartService()
	ctx := context.Background()

	backend.On("GetBasket", mock.Anything, "guest-token", "cart-1").Return(basketWithItems(), nil).Once()
	backend.On("GetProduct", mock.Anything, "guest-token", "prod-1").Return(laptop, nil).Once()
	backend.On("GetBasket", mock.Anything, "other-token", "cart-1").
		Return(nil, commerce.NewResponseError(http.StatusNotFound, "Basket not found")).Once()

	cart, err := svc.GetCart(ctx, models.NewSession("guest-token", "cart-1", ""))
	require.NoError(t, err)
	require.NotNil(t, cart)

	// same cart id, different shopper: the cached cart is not served
	cart, err = svc.GetCart(ctx, models.NewSession("other-token", "cart-1", ""))
	assert.NoError(t, err)
	assert.Nil(t, cart)
	backend.AssertExpectations(t)
	assert.NotEqual(t, services.CartCacheKey("guest-token", "cart-1"), services.CartCacheKey("other-token", "cart-1"))
}

func TestCartService_GetCart_Missing(t *testing.T) {
	svc, backend := newCartService()

	cart, err := svc.GetCart(context.Background(), models.NewSession("guest-token", "", ""))
	assert.NoError(t, err)
	assert.Nil(t, cart)
	assert.Empty(t, backend.Calls)

	backend.On("GetBasket", mock.Anything, "guest-token", "gone").
		Return(nil, commerce.NewResponseError(http.StatusNotFound, "Basket not found")).Once()
	cart, err = svc.GetCart(context.Background(), models.NewSession("guest-token", "gone", ""))
	assert.NoError(t, err)
	assert.Nil(t, cart)

	backend.On("GetBasket", mock.Anything, "guest-token", "broken").Return(nil, errors.New("timeout")).Once()
	_, err = svc.GetCart(context.Background(), models.NewSession("guest-token", "broken", ""))
	assert.Error(t, err)
}

func TestCartService_GetShippingPage(t *testing.T) {
	svc, backend := newCartService()
	sess := models.NewSession("guest-token", "cart-1", "")

	backend.On("GetBasket", mock.Anything, "guest-token", "cart-1").Return(&commerce.Basket{BasketID: "cart-1"}, nil).Once()
	backend.On("GetShippingMethodsForShipment", mock.Anything, "guest-token", "cart-1", "me").Return(&commerce.ShippingMethodResult{
		DefaultShippingMethodID: "001",
		ApplicableShippingMethods: []commerce.ShippingMethod{
			{ID: "001", Name: "Ground", Price: price(5.99)},
			{ID: "002", Name: "Express", Price: price(9.99)},
		},
	}, nil).Once()

	cart, methods, err := svc.GetShippingPage(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "cart-1", cart.ID)
	require.Len(t, methods, 2)
	assert.True(t, methods[0].IsDefault)
	backend.AssertExpectations(t)
}

func TestCartService_AddToCart_CreatesCart(t *testing.T) {
	svc, backend := newCartService()
	sess := models.NewSession("guest-token", "", "")

	backend.On("CreateBasket", mock.Anything, "guest-token").Return(&commerce.Basket{BasketID: "cart-9"}, nil).Once()
	backend.On("AddItemsToBasket", mock.Anything, "guest-token", "cart-9", []commerce.ProductItemRequest{{ProductID: "prod-1", Quantity: 2}}).
		Return(basketWithItems(), nil).Once()
	backend.On("GetProduct", mock.Anything, "guest-token", "prod-1").Return(laptop, nil).Once()

	cart, err := svc.AddToCart(context.Background(), sess, []services.CartLine{{MerchandiseID: "prod-1", Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, "cart-9", sess.CartID())
	assert.True(t, sess.Changed(models.CookieCartID))
	assert.Len(t, cart.Lines, 1)
	backend.AssertExpectations(t)
}

func TestCartService_GetConfirmationOrder(t *testing.T) {
	svc, backend := newCartService()

	_, err := svc.GetConfirmationOrder(context.Background(), models.NewSession("guest-token", "", ""))
	assert.ErrorIs(t, err, services.ErrNoOrder)

	backend.On("GetOrder", mock.Anything, "guest-token", "MISSING").
		Return(nil, commerce.NewResponseError(http.StatusNotFound, "")).Once()
	_, err = svc.GetConfirmationOrder(context.Background(), models.NewSession("guest-token", "", "MISSING"))
	assert.ErrorIs(t, err, services.ErrNoOrder)

	backend.On("GetOrder", mock.Anything, "guest-token", "A1B2C3D4").
		Return(&commerce.Order{Basket: *basketWithItems(), OrderNo: "A1B2C3D4"}, nil).Once()
	backend.On("GetProduct", mock.Anything, "guest-token", "prod-1").Return(laptop, nil).Once()

	order, err := svc.GetConfirmationOrder(context.Background(), models.NewSession("guest-token", "", "A1B2C3D4"))
	require.NoError(t, err)
	assert.Equal(t, "A1B2C3D4", order.OrderNumber)
	assert.Len(t, order.Lines, 1)
}

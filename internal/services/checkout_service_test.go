package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"storefront/internal/cache"
	"storefront/internal/commerce"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/validation"
	"storefront/pkg/rabbitmq"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []rabbitmq.OrderPlaced
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(event rabbitmq.OrderPlaced) error {
	p.events = append(p.events, event)
	return p.err
}

type checkoutFixture struct {
	backend   *MockBackend
	cache     *cache.MemoryCache
	publisher *recordingPublisher
	service   *services.CheckoutService
	session   *models.Session
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	backend := new(MockBackend)
	memory := cache.NewMemoryCache(time.Minute)
	publisher := &recordingPublisher{}
	m := metrics.NewCheckoutMetrics(prometheus.NewRegistry())
	svc := services.NewCheckoutService(backend, cache.NewLoader(memory, nil), publisher, m, nil)

	key := services.CartCacheKey("guest-token", "cart-1")
	require.NoError(t, memory.Set(context.Background(), cache.TagCart, key, 0, models.Cart{ID: "cart-1"}))

	return &checkoutFixture{
		backend:   backend,
		cache:     memory,
		publisher: publisher,
		service:   svc,
		session:   models.NewSession("guest-token", "cart-1", ""),
	}
}

func (f *checkoutFixture) cartCached() bool {
	var cart models.Cart
	key := services.CartCacheKey("guest-token", "cart-1")
	return f.cache.Get(context.Background(), cache.TagCart, key, &cart) == nil
}

func informationValues() validation.FormValues {
	return validation.FormValues{
		"email":     "jane@example.com",
		"firstName": "Jane",
		"lastName":  "Doe",
		"address1":  "1 Main St",
		"city":      "Springfield",
		"state":     "IL",
		"zip":       "62701",
		"country":   "US",
		"phone":     "(217) 555-0100",
	}
}

func paymentValues(sameBilling bool) validation.FormValues {
	values := validation.FormValues{
		"cardholderName":  "Jane Doe",
		"cardNumber":      "4111 1111 1111 1111",
		"expirationMonth": "12",
		"expirationYear":  "2030",
		"securityCode":    "123",
	}
	if sameBilling {
		values["billingSameAsShipping"] = "on"
		return values
	}
	values["billingAddress.firstName"] = "John"
	values["billingAddress.lastName"] = "Doe"
	values["billingAddress.address1"] = "9 Elm St"
	values["billingAddress.city"] = "Chicago"
	values["billingAddress.state"] = "IL"
	values["billingAddress.zip"] = "60601"
	values["billingAddress.country"] = "US"
	return values
}

var anyCtx = mock.Anything

func TestUpdateShippingContact_Success(t *testing.T) {
	f := newCheckoutFixture(t)
	basket := &commerce.Basket{BasketID: "cart-1"}

	f.backend.On("UpdateCustomerForBasket", anyCtx, "guest-token", "cart-1", "jane@example.com").Return(basket, nil).Once()
	f.backend.On("UpdateShippingAddressForShipment", anyCtx, "guest-token", "cart-1", "me", mock.MatchedBy(func(a commerce.OrderAddress) bool {
		return a.Phone == "2175550100" && a.StateCode == "IL" && a.PostalCode == "62701" && a.CountryCode == "US"
	})).Return(basket, nil).Once()

	state := f.service.UpdateShippingContact(context.Background(), f.session, informationValues())

	assert.Nil(t, state)
	assert.Equal(t, []string{"UpdateCustomerForBasket", "UpdateShippingAddressForShipment"}, f.backend.methods())
	assert.False(t, f.cartCached())
	f.backend.AssertExpectations(t)
}

func TestUpdateShippingContact_ValidationMakesNoCalls(t *testing.T) {
	f := newCheckoutFixture(t)
	values := informationValues()
	values["email"] = "not-an-email"
	values["phone"] = "123"

	state := f.service.UpdateShippingContact(context.Background(), f.session, values)

	require.NotNil(t, state)
	assert.Empty(t, state.Errors.FormErrors)
	assert.Equal(t, []string{"Please enter a valid email address"}, state.Errors.FieldErrors["email"])
	assert.Equal(t, []string{"Please enter a valid phone number"}, state.Errors.FieldErrors["phone"])
	assert.Empty(t, f.backend.Calls)
	assert.True(t, f.cartCached())
}

func TestUpdateShippingContact_EmailFailureStopsStage(t *testing.T) {
	f := newCheckoutFixture(t)
	f.backend.On("UpdateCustomerForBasket", anyCtx, "guest-token", "cart-1", "jane@example.com").
		Return(nil, commerce.NewResponseError(http.StatusBadRequest, "Email domain is blocked")).Once()

	state := f.service.UpdateShippingContact(context.Background(), f.session, informationValues())

	require.NotNil(t, state)
	assert.Equal(t, []string{"Email domain is blocked"}, state.Errors.FormErrors)
	f.backend.AssertNotCalled(t, "UpdateShippingAddressForShipment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, f.cartCached())
}

func TestUpdateShippingContact_AddressFailureKeepsEmail(t *testing.T) {
	f := newCheckoutFixture(t)
	f.backend.On("UpdateCustomerForBasket", anyCtx, "guest-token", "cart-1", "jane@example.com").Return(&commerce.Basket{}, nil).Once()
	f.backend.On("UpdateShippingAddressForShipment", anyCtx, "guest-token", "cart-1", "me", mock.Anything).
		Return(nil, errors.New("connection reset")).Once()

	state := f.service.UpdateShippingContact(context.Background(), f.session, informationValues())

	require.NotNil(t, state)
	assert.Equal(t, "An error occurred while updating your shipping address", state.GlobalError())
	assert.Len(t, f.backend.Calls, 2)
}

func TestStages_NoCart(t *testing.T) {
	f := newCheckoutFixture(t)
	sess := models.NewSession("guest-token", "", "")
	ctx := context.Background()

	states := []*services.FormActionState{
		f.service.UpdateShippingContact(ctx, sess, informationValues()),
		f.service.UpdateShippingMethod(ctx, sess, validation.FormValues{"shippingMethodId": "001"}),
		f.service.AddPaymentMethod(ctx, sess, paymentValues(true)),
		f.service.UpdateBillingAddress(ctx, sess, paymentValues(false)),
		f.service.PlaceOrder(ctx, sess),
		f.service.SubmitPayment(ctx, sess, paymentValues(true)),
	}
	for _, state := range states {
		require.NotNil(t, state)
		assert.True(t, errors.Is(state.Err, services.ErrNoCart))
	}
	assert.Empty(t, f.backend.Calls)
}

func TestUpdateShippingMethod(t *testing.T) {
	f := newCheckoutFixture(t)

	state := f.service.UpdateShippingMethod(context.Background(), f.session, validation.FormValues{})
	require.NotNil(t, state)
	assert.Equal(t, []string{"Shipping method is required"}, state.Errors.FieldErrors["shippingMethodId"])

	f.backend.On("UpdateShippingMethodForShipment", anyCtx, "guest-token", "cart-1", "me", "002").Return(&commerce.Basket{}, nil).Once()
	state = f.service.UpdateShippingMethod(context.Background(), f.session, validation.FormValues{"shippingMethodId": "002"})
	assert.Nil(t, state)
	assert.False(t, f.cartCached())
	f.backend.AssertExpectations(t)
}

func TestAddPaymentMethod_MasksCard(t *testing.T) {
	f := newCheckoutFixture(t)
	f.backend.On("AddPaymentInstrumentToBasket", anyCtx, "guest-token", "cart-1", commerce.PaymentInstrumentRequest{
		Amount:          0,
		PaymentMethodID: "CREDIT_CARD",
		PaymentCard: commerce.PaymentCard{
			CardType:        "Visa",
			MaskedNumber:    "************1111",
			ExpirationMonth: 12,
			ExpirationYear:  2030,
		},
	}).Return(&commerce.Basket{}, nil).Once()

	state := f.service.AddPaymentMethod(context.Background(), f.session, paymentValues(true))

	assert.Nil(t, state)
	f.backend.AssertExpectations(t)
}

func TestSubmitPayment_SameBilling(t *testing.T) {
	f := newCheckoutFixture(t)
	f.backend.On("AddPaymentInstrumentToBasket", anyCtx, "guest-token", "cart-1", mock.Anything).Return(&commerce.Basket{}, nil).Once()
	f.backend.On("CreateOrder", anyCtx, "guest-token", "cart-1").Return(&commerce.Order{
		Basket: commerce.Basket{
			ProductSubTotal:     100,
			MerchandizeTotalTax: 8,
			ProductItems:        []commerce.ProductItem{{ProductID: "prod-1", Quantity: 2}},
			CustomerInfo:        &commerce.CustomerInfo{Email: "jane@example.com"},
		},
		OrderNo: "A1B2C3D4",
	}, nil).Once()

	state := f.service.SubmitPayment(context.Background(), f.session, paymentValues(true))

	assert.Nil(t, state)
	assert.Equal(t, []string{"AddPaymentInstrumentToBasket", "CreateOrder"}, f.backend.methods())
	f.backend.AssertNumberOfCalls(t, "UpdateBillingAddressForBasket", 0)

	assert.Empty(t, f.session.CartID())
	assert.True(t, f.session.Changed(models.CookieCartID))
	assert.Equal(t, "A1B2C3D4", f.session.OrderID())

	require.Len(t, f.publisher.events, 1)
	event := f.publisher.events[0]
	assert.Equal(t, "A1B2C3D4", event.OrderNo)
	assert.Equal(t, "cart-1", event.CartID)
	assert.Equal(t, "108.00", event.Total)
	assert.Equal(t, 2, event.Items)
}

func TestSubmitPayment_SeparateBilling(t *testing.T) {
	f := newCheckoutFixture(t)
	f.backend.On("AddPaymentInstrumentToBasket", anyCtx, "guest-token", "cart-1", mock.Anything).Return(&commerce.Basket{}, nil).Once()
	f.backend.On("UpdateBillingAddressForBasket", anyCtx, "guest-token", "cart-1", mock.MatchedBy(func(a commerce.OrderAddress) bool {
		return a.FirstName == "John" && a.PostalCode == "60601"
	})).Return(&commerce.Basket{}, nil).Once()
	f.backend.On("CreateOrder", anyCtx, "guest-token", "cart-1").Return(&commerce.Order{OrderNo: "Z9"}, nil).Once()

	state := f.service.SubmitPayment(context.Background(), f.session, paymentValues(false))

	assert.Nil(t, state)
	assert.Equal(t, []string{"AddPaymentInstrumentToBasket", "UpdateBillingAddressForBasket", "CreateOrder"}, f.backend.methods())
}

func TestSubmitPayment_PaymentFailureShortCircuits(t *testing.T) {
	f := newCheckoutFixture(t)
	f.backend.On("AddPaymentInstrumentToBasket", anyCtx, "guest-token", "cart-1", mock.Anything).
		Return(nil, commerce.NewResponseError(http.StatusBadRequest, "Card declined")).Once()

	state := f.service.SubmitPayment(context.Background(), f.session, paymentValues(false))

	require.NotNil(t, state)
	assert.Equal(t, "Card declined", state.GlobalError())
	assert.Equal(t, []string{"AddPaymentInstrumentToBasket"}, f.backend.methods())
	assert.Equal(t, "cart-1", f.session.CartID())
	assert.Empty(t, f.publisher.events)
}

func TestSubmitPayment_BillingValidationAfterPayment(t *testing.T) {
	f := newCheckoutFixture(t)
	f.backend.On("AddPaymentInstrumentToBasket", anyCtx, "guest-token", "cart-1", mock.Anything).Return(&commerce.Basket{}, nil).Once()
	values := paymentValues(false)
	delete(values, "billingAddress.zip")

	state := f.service.SubmitPayment(context.Background(), f.session, values)

	require.NotNil(t, state)
	assert.Equal(t, []string{"Zip code is required"}, state.Errors.FieldErrors["billingAddress.zip"])
	assert.Equal(t, []string{"AddPaymentInstrumentToBasket"}, f.backend.methods())
}

func TestSubmitPayment_InvalidCardMakesNoCalls(t *testing.T) {
	f := newCheckoutFixture(t)
	values := paymentValues(true)
	values["securityCode"] = "12"

	state := f.service.SubmitPayment(context.Background(), f.session, values)

	require.NotNil(t, state)
	assert.Equal(t, []string{"Security code must be 3-4 digits"}, state.Errors.FieldErrors["securityCode"])
	assert.Empty(t, f.backend.Calls)
}

func TestPlaceOrder_FailureKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.backend.On("CreateOrder", anyCtx, "guest-token", "cart-1").Return(nil, errors.New("timeout")).Once()

	state := f.service.PlaceOrder(context.Background(), f.session)

	require.NotNil(t, state)
	assert.Equal(t, "An error occurred while placing your order", state.GlobalError())
	assert.Equal(t, "cart-1", f.session.CartID())
	assert.Empty(t, f.session.OrderID())
	assert.True(t, f.cartCached())
}

func TestPlaceOrder_PublishFailureIsIgnored(t *testing.T) {
	f := newCheckoutFixture(t)
	f.publisher.err = errors.New("broker down")
	f.backend.On("CreateOrder", anyCtx, "guest-token", "cart-1").Return(&commerce.Order{OrderNo: "A1"}, nil).Once()

	state := f.service.PlaceOrder(context.Background(), f.session)

	assert.Nil(t, state)
	assert.Equal(t, "A1", f.session.OrderID())
}

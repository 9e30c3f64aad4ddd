package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"storefront/internal/cache"
	"storefront/internal/commerce"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/validation"
	"storefront/pkg/rabbitmq"

	"go.uber.org/zap"
)

var (
	// ErrNoCart means the session has no cart to act on.
	ErrNoCart = errors.New("no cart in session")
	// ErrNoOrder means the session has no placed order to show.
	ErrNoOrder = errors.New("no order in session")
)

// Checkout stages, also used as metric labels.
const (
	StageUpdateShippingContact = "update_shipping_contact"
	StageUpdateShippingMethod  = "update_shipping_method"
	StageAddPaymentMethod      = "add_payment_method"
	StageUpdateBillingAddress  = "update_billing_address"
	StagePlaceOrder            = "place_order"
)

var stageFallbacks = map[string]string{
	StageUpdateShippingContact: "An error occurred while updating your shipping address",
	StageUpdateShippingMethod:  "An error occurred while updating your shipping method",
	StageAddPaymentMethod:      "An error occurred while adding your payment method",
	StageUpdateBillingAddress:  "Error updating billing address",
	StagePlaceOrder:            "An error occurred while placing your order",
}

const (
	noCartMessage         = "Your cart could not be found"
	creditCardPaymentType = "CREDIT_CARD"
)

// FormActionState is the result of a failed stage. A nil state means the
// stage succeeded.
type FormActionState struct {
	Errors validation.Errors `json:"errors"`
	// Err is the cause of a top-level failure, nil for validation failures.
	Err error `json:"-"`
}

// GlobalError returns the top-level message, if any.
func (s *FormActionState) GlobalError() string {
	if s == nil || len(s.Errors.FormErrors) == 0 {
		return ""
	}
	return s.Errors.FormErrors[0]
}

func validationState(fieldErrors validation.FieldErrors) *FormActionState {
	return &FormActionState{Errors: validation.Errors{FieldErrors: fieldErrors}}
}

func failureState(msg string, err error) *FormActionState {
	return &FormActionState{
		Errors: validation.Errors{FormErrors: []string{msg}},
		Err:    err,
	}
}

// OrderEventPublisher announces placed orders.
type OrderEventPublisher interface {
	PublishOrderPlaced(event rabbitmq.OrderPlaced) error
}

// CheckoutService runs the checkout stages against the commerce backend.
// Each stage validates its form, performs its backend calls one after the
// other, and invalidates the cached cart on success. Nothing is rolled back
// when a later call of a stage fails.
type CheckoutService struct {
	backend   commerce.Backend
	cache     *cache.Loader
	publisher OrderEventPublisher
	metrics   *metrics.CheckoutMetrics
	log       *zap.Logger
	sessions  *keyedMutex
}

// NewCheckoutService creates a new CheckoutService. publisher and m may be nil.
func NewCheckoutService(backend commerce.Backend, loader *cache.Loader, publisher OrderEventPublisher, m *metrics.CheckoutMetrics, log *zap.Logger) *CheckoutService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{
		backend:   backend,
		cache:     loader,
		publisher: publisher,
		metrics:   m,
		log:       log,
		sessions:  newKeyedMutex(),
	}
}

// lock serializes actions of one session.
func (s *CheckoutService) lock(sess *models.Session) func() {
	key := sess.GuestToken()
	if key == "" {
		key = "cart:" + sess.CartID()
	}
	return s.sessions.Lock(key)
}

// run executes the backend calls of a stage and commits or reports the outcome.
func (s *CheckoutService) run(ctx context.Context, stage string, sess *models.Session, call func(ctx context.Context) error) *FormActionState {
	start := time.Now()
	if err := call(ctx); err != nil {
		s.metrics.ObserveStage(stage, metrics.OutcomeBackendError, time.Since(start))
		s.log.Warn("checkout stage failed",
			zap.String("stage", stage),
			zap.String("cart_id", sess.CartID()),
			zap.Error(err),
		)
		return failureState(commerce.ErrorDetail(err, stageFallbacks[stage]), err)
	}

	s.invalidateCart(ctx)
	s.metrics.ObserveStage(stage, metrics.OutcomeSuccess, time.Since(start))
	return nil
}

func (s *CheckoutService) rejected(stage string, fieldErrors validation.FieldErrors) *FormActionState {
	s.metrics.ObserveStage(stage, metrics.OutcomeValidationError, 0)
	return validationState(fieldErrors)
}

func (s *CheckoutService) invalidateCart(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.TagCart); err != nil {
		s.log.Warn("failed to invalidate cart cache", zap.Error(err))
		return
	}
	s.metrics.IncCacheInvalidation(cache.TagCart)
}

func noCart() *FormActionState {
	return failureState(noCartMessage, ErrNoCart)
}

func orderAddress(form validation.AddressForm) commerce.OrderAddress {
	return commerce.OrderAddress{
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		Address1:    form.Address1,
		Address2:    form.Address2,
		City:        form.City,
		StateCode:   form.State,
		PostalCode:  form.Zip,
		CountryCode: form.Country,
		Phone:       validation.DigitsOnly(form.Phone),
	}
}

// UpdateShippingContact stores the shopper email, then the shipping address.
func (s *CheckoutService) UpdateShippingContact(ctx context.Context, sess *models.Session, values validation.FormValues) *FormActionState {
	if sess.CartID() == "" {
		return noCart()
	}
	form, fieldErrors := validation.InformationSchema.Parse(values)
	if fieldErrors != nil {
		return s.rejected(StageUpdateShippingContact, fieldErrors)
	}

	defer s.lock(sess)()
	return s.run(ctx, StageUpdateShippingContact, sess, func(ctx context.Context) error {
		token, cartID := sess.GuestToken(), sess.CartID()
		if _, err := s.backend.UpdateCustomerForBasket(ctx, token, cartID, form.Email); err != nil {
			return err
		}
		_, err := s.backend.UpdateShippingAddressForShipment(ctx, token, cartID, commerce.DefaultShipmentID, orderAddress(form.AddressForm))
		return err
	})
}

// UpdateShippingMethod selects the shipping method of the default shipment.
func (s *CheckoutService) UpdateShippingMethod(ctx context.Context, sess *models.Session, values validation.FormValues) *FormActionState {
	if sess.CartID() == "" {
		return noCart()
	}
	form, fieldErrors := validation.ShippingMethodSchema.Parse(values)
	if fieldErrors != nil {
		return s.rejected(StageUpdateShippingMethod, fieldErrors)
	}

	defer s.lock(sess)()
	return s.run(ctx, StageUpdateShippingMethod, sess, func(ctx context.Context) error {
		_, err := s.backend.UpdateShippingMethodForShipment(ctx, sess.GuestToken(), sess.CartID(), commerce.DefaultShipmentID, form.ShippingMethodID)
		return err
	})
}

// AddPaymentMethod attaches a credit card instrument. Only the card type,
// the masked number and the expiration reach the backend.
func (s *CheckoutService) AddPaymentMethod(ctx context.Context, sess *models.Session, values validation.FormValues) *FormActionState {
	if sess.CartID() == "" {
		return noCart()
	}
	defer s.lock(sess)()
	return s.addPaymentMethod(ctx, sess, values)
}

func (s *CheckoutService) addPaymentMethod(ctx context.Context, sess *models.Session, values validation.FormValues) *FormActionState {
	form, fieldErrors := validation.PaymentSchema.Parse(values)
	if fieldErrors != nil {
		return s.rejected(StageAddPaymentMethod, fieldErrors)
	}

	// both were checked as fixed-width numbers
	month, _ := strconv.Atoi(form.ExpirationMonth)
	year, _ := strconv.Atoi(form.ExpirationYear)

	req := commerce.PaymentInstrumentRequest{
		Amount:          0,
		PaymentMethodID: creditCardPaymentType,
		PaymentCard: commerce.PaymentCard{
			CardType:        commerce.CardType(form.CardNumber),
			MaskedNumber:    commerce.MaskCardNumber(form.CardNumber),
			ExpirationMonth: month,
			ExpirationYear:  year,
		},
	}
	return s.run(ctx, StageAddPaymentMethod, sess, func(ctx context.Context) error {
		_, err := s.backend.AddPaymentInstrumentToBasket(ctx, sess.GuestToken(), sess.CartID(), req)
		return err
	})
}

// UpdateBillingAddress reads the billingAddress.* fields of the payment form.
func (s *CheckoutService) UpdateBillingAddress(ctx context.Context, sess *models.Session, values validation.FormValues) *FormActionState {
	if sess.CartID() == "" {
		return noCart()
	}
	defer s.lock(sess)()
	return s.updateBillingAddress(ctx, sess, values)
}

func (s *CheckoutService) updateBillingAddress(ctx context.Context, sess *models.Session, values validation.FormValues) *FormActionState {
	form, fieldErrors := validation.BillingAddressSchema.Parse(values)
	if fieldErrors != nil {
		return s.rejected(StageUpdateBillingAddress, fieldErrors)
	}

	return s.run(ctx, StageUpdateBillingAddress, sess, func(ctx context.Context) error {
		_, err := s.backend.UpdateBillingAddressForBasket(ctx, sess.GuestToken(), sess.CartID(), orderAddress(form))
		return err
	})
}

// PlaceOrder turns the cart into an order. On success the session forgets
// the cart and remembers the order number for the confirmation page.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sess *models.Session) *FormActionState {
	if sess.CartID() == "" {
		return noCart()
	}
	defer s.lock(sess)()
	return s.placeOrder(ctx, sess)
}

func (s *CheckoutService) placeOrder(ctx context.Context, sess *models.Session) *FormActionState {
	cartID := sess.CartID()
	var order *commerce.Order
	state := s.run(ctx, StagePlaceOrder, sess, func(ctx context.Context) error {
		var err error
		order, err = s.backend.CreateOrder(ctx, sess.GuestToken(), cartID)
		return err
	})
	if state != nil {
		return state
	}

	sess.ClearCartID()
	sess.SetOrderID(order.OrderNo)
	s.metrics.IncOrdersPlaced()
	s.log.Info("order placed", zap.String("order_no", order.OrderNo), zap.String("cart_id", cartID))
	s.publishOrderPlaced(cartID, order)
	return nil
}

func (s *CheckoutService) publishOrderPlaced(cartID string, order *commerce.Order) {
	if s.publisher == nil {
		return
	}
	placed := commerce.ReshapeOrder(order, nil)
	items := 0
	for _, item := range order.ProductItems {
		items += item.Quantity
	}
	email := ""
	if order.CustomerInfo != nil {
		email = order.CustomerInfo.Email
	}
	event := rabbitmq.OrderPlaced{
		OrderNo:  order.OrderNo,
		CartID:   cartID,
		Email:    email,
		Total:    placed.Cost.Total.Amount.StringFixed(2),
		Currency: placed.Cost.Total.CurrencyCode,
		Items:    items,
		PlacedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderPlaced(event); err != nil {
		s.log.Warn("failed to publish order placed event", zap.String("order_no", order.OrderNo), zap.Error(err))
	}
}

// SubmitPayment runs the payment page: add the payment method, update the
// billing address unless it mirrors shipping, then place the order. The
// first failing stage ends the submission.
func (s *CheckoutService) SubmitPayment(ctx context.Context, sess *models.Session, values validation.FormValues) *FormActionState {
	if sess.CartID() == "" {
		return noCart()
	}
	defer s.lock(sess)()

	if state := s.addPaymentMethod(ctx, sess, values); state != nil {
		return state
	}

	payment, _ := validation.PaymentSchema.Parse(values)
	if !payment.SameBilling() {
		if state := s.updateBillingAddress(ctx, sess, values); state != nil {
			return state
		}
	}

	return s.placeOrder(ctx, sess)
}

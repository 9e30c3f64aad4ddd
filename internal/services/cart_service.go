package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/cache"
	"storefront/internal/commerce"
	"storefront/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxProductFetches bounds concurrent product lookups per cart.
const maxProductFetches = 8

// CartLine is one add-to-cart request line.
type CartLine struct {
	MerchandiseID string `json:"merchandiseId" validate:"required"`
	Quantity      int    `json:"quantity" validate:"required,gt=0"`
}

// CartService reads carts and orders and manages the guest cart.
type CartService struct {
	backend commerce.Backend
	cache   *cache.Loader
	log     *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(backend commerce.Backend, loader *cache.Loader, log *zap.Logger) *CartService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartService{backend: backend, cache: loader, log: log}
}

// GetCart returns the session cart, or nil when the session has none or the
// basket no longer exists.
func (s *CartService) GetCart(ctx context.Context, sess *models.Session) (*models.Cart, error) {
	cartID := sess.CartID()
	if cartID == "" {
		return nil, nil
	}

	cart, err := cache.Load(ctx, s.cache, cache.TagCart, CartCacheKey(sess.GuestToken(), cartID), func(ctx context.Context) (*models.Cart, error) {
		return s.loadCart(ctx, sess.GuestToken(), cartID)
	})
	if err != nil {
		if errors.Is(err, commerce.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart %s: %w", cartID, err)
	}
	return cart, nil
}

// CartCacheKey scopes a cached cart to the guest token that loaded it, so a
// cart id presented with another token goes back to the backend.
func CartCacheKey(token, cartID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(token)).String() + ":" + cartID
}

func (s *CartService) loadCart(ctx context.Context, token, cartID string) (*models.Cart, error) {
	basket, err := s.backend.GetBasket(ctx, token, cartID)
	if err != nil {
		return nil, err
	}
	lines, err := s.lines(ctx, token, basket)
	if err != nil {
		return nil, err
	}
	return commerce.ReshapeBasket(basket, lines), nil
}

// lines fetches the products of a basket concurrently and builds its lines
// in basket order.
func (s *CartService) lines(ctx context.Context, token string, basket *commerce.Basket) ([]models.LineItem, error) {
	currency := basket.Currency
	if currency == "" {
		currency = "USD"
	}

	products := make([]models.CartProduct, len(basket.ProductItems))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxProductFetches)
	for i, item := range basket.ProductItems {
		if item.ProductID == "" {
			continue
		}
		g.Go(func() error {
			product, err := s.GetProduct(gctx, token, item.ProductID)
			if err != nil {
				return err
			}
			products[i] = product
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lines := make([]models.LineItem, 0, len(basket.ProductItems))
	for i, item := range basket.ProductItems {
		lines = append(lines, commerce.ReshapeProductItem(item, currency, products[i]))
	}
	return lines, nil
}

// GetProduct returns the cached catalog snapshot of a product.
func (s *CartService) GetProduct(ctx context.Context, token, productID string) (models.CartProduct, error) {
	return cache.Load(ctx, s.cache, cache.TagProducts, productID, func(ctx context.Context) (models.CartProduct, error) {
		product, err := s.backend.GetProduct(ctx, token, productID)
		if err != nil {
			return models.CartProduct{}, fmt.Errorf("failed to get product %s: %w", productID, err)
		}
		return commerce.ReshapeProduct(product), nil
	})
}

// GetShippingMethods lists the methods applicable to the default shipment.
func (s *CartService) GetShippingMethods(ctx context.Context, sess *models.Session) ([]models.ShippingMethod, error) {
	if sess.CartID() == "" {
		return nil, ErrNoCart
	}
	result, err := s.backend.GetShippingMethodsForShipment(ctx, sess.GuestToken(), sess.CartID(), commerce.DefaultShipmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shipping methods: %w", err)
	}
	return commerce.ReshapeShippingMethods(result), nil
}

// GetShippingPage loads the cart and its shipping methods concurrently.
func (s *CartService) GetShippingPage(ctx context.Context, sess *models.Session) (*models.Cart, []models.ShippingMethod, error) {
	var (
		cart    *models.Cart
		methods []models.ShippingMethod
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cart, err = s.GetCart(gctx, sess)
		return err
	})
	g.Go(func() error {
		var err error
		methods, err = s.GetShippingMethods(gctx, sess)
		if errors.Is(err, commerce.ErrNotFound) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if methods == nil {
		methods = []models.ShippingMethod{}
	}
	return cart, methods, nil
}

// EnsureCart returns the session cart, creating an empty one when the
// session has none or its basket is gone.
func (s *CartService) EnsureCart(ctx context.Context, sess *models.Session) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, sess)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	basket, err := s.backend.CreateBasket(ctx, sess.GuestToken())
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	sess.SetCartID(basket.BasketID)
	s.log.Info("cart created", zap.String("cart_id", basket.BasketID))
	return commerce.ReshapeBasket(basket, nil), nil
}

// AddToCart adds lines to the session cart, creating the cart if needed.
func (s *CartService) AddToCart(ctx context.Context, sess *models.Session, lines []CartLine) (*models.Cart, error) {
	if _, err := s.EnsureCart(ctx, sess); err != nil {
		return nil, err
	}

	items := make([]commerce.ProductItemRequest, 0, len(lines))
	for _, l := range lines {
		items = append(items, commerce.ProductItemRequest{ProductID: l.MerchandiseID, Quantity: l.Quantity})
	}
	basket, err := s.backend.AddItemsToBasket(ctx, sess.GuestToken(), sess.CartID(), items)
	if err != nil {
		return nil, fmt.Errorf("failed to add items to cart: %w", err)
	}
	if err := s.cache.Invalidate(ctx, cache.TagCart); err != nil {
		s.log.Warn("failed to invalidate cart cache", zap.Error(err))
	}

	cartLines, err := s.lines(ctx, sess.GuestToken(), basket)
	if err != nil {
		return nil, err
	}
	return commerce.ReshapeBasket(basket, cartLines), nil
}

// GetConfirmationOrder returns the order remembered by the session, or
// ErrNoOrder when there is none to show.
func (s *CartService) GetConfirmationOrder(ctx context.Context, sess *models.Session) (*models.Order, error) {
	orderID := sess.OrderID()
	if orderID == "" {
		return nil, ErrNoOrder
	}
	order, err := s.backend.GetOrder(ctx, sess.GuestToken(), orderID)
	if err != nil {
		if errors.Is(err, commerce.ErrNotFound) {
			return nil, ErrNoOrder
		}
		return nil, fmt.Errorf("failed to get order %s: %w", orderID, err)
	}
	lines, err := s.lines(ctx, sess.GuestToken(), &order.Basket)
	if err != nil {
		return nil, err
	}
	return commerce.ReshapeOrder(order, lines), nil
}

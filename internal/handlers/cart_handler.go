package handlers

import (
	"errors"
	"fmt"

	"storefront/internal/commerce"
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for the guest cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	log      *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/", h.HandleCreateCart)
	cartRoutes.Post("/items", h.HandleAddItems)
}

type addItemsRequest struct {
	Lines []services.CartLine `json:"lines" validate:"required,min=1,dive"`
}

// HandleGetCart returns the session cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), middleware.Session(c))
	if err != nil {
		h.log.Error("failed to get cart", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}
	if cart == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Cart not found",
		})
	}
	return c.JSON(cart)
}

// HandleCreateCart creates an empty cart unless the session already has one.
func (h *CartHandler) HandleCreateCart(c *fiber.Ctx) error {
	sess := middleware.Session(c)
	existing := sess.CartID()
	cart, err := h.service.EnsureCart(c.UserContext(), sess)
	if err != nil {
		h.log.Error("failed to create cart", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create cart",
			"error":   err.Error(),
		})
	}
	if sess.CartID() != existing {
		return c.Status(fiber.StatusCreated).JSON(cart)
	}
	return c.JSON(cart)
}

// HandleAddItems adds lines to the session cart.
func (h *CartHandler) HandleAddItems(c *fiber.Ctx) error {
	var req addItemsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Namespace()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	cart, err := h.service.AddToCart(c.UserContext(), middleware.Session(c), req.Lines)
	if err != nil {
		var respErr *commerce.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode < fiber.StatusInternalServerError {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": commerce.ErrorDetail(err, "Could not add items to cart"),
				"error":   err.Error(),
			})
		}
		h.log.Error("failed to add items to cart", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add items to cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(cart)
}

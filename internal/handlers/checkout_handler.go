package handlers

import (
	"errors"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CheckoutHandler serves the checkout pages and their form actions.
type CheckoutHandler struct {
	checkout *services.CheckoutService
	carts    *services.CartService
	log      *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout *services.CheckoutService, carts *services.CartService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, carts: carts, log: log}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkout := router.Group("/checkout")
	checkout.Get("/", h.HandleCheckout)
	checkout.Get("/information", h.HandleStepPage)
	checkout.Get("/shipping", h.HandleShippingPage)
	checkout.Get("/payment", h.HandleStepPage)
	checkout.Get("/confirmation", h.HandleConfirmation)

	checkout.Post("/information", h.action(func(c *fiber.Ctx, sess *models.Session, values validation.FormValues) *services.FormActionState {
		return h.checkout.UpdateShippingContact(c.UserContext(), sess, values)
	}))
	checkout.Post("/shipping", h.action(func(c *fiber.Ctx, sess *models.Session, values validation.FormValues) *services.FormActionState {
		return h.checkout.UpdateShippingMethod(c.UserContext(), sess, values)
	}))
	checkout.Post("/payment", h.action(func(c *fiber.Ctx, sess *models.Session, values validation.FormValues) *services.FormActionState {
		return h.checkout.SubmitPayment(c.UserContext(), sess, values)
	}))
}

// redirectNavigator remembers where the progress controller sent the shopper.
type redirectNavigator struct {
	target string
}

func (n *redirectNavigator) Push(path string) {
	n.target = path
}

func redirectHome(c *fiber.Ctx) error {
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *CheckoutHandler) serverError(c *fiber.Ctx, msg string, err error) error {
	h.log.Error(msg, zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": msg,
		"error":   err.Error(),
	})
}

// HandleCheckout sends the shopper to the first step the cart still needs.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	cart, err := h.carts.GetCart(c.UserContext(), middleware.Session(c))
	if err != nil {
		return h.serverError(c, "Could not load cart", err)
	}
	return c.Redirect(services.PathForCartCheckoutStep(cart), fiber.StatusSeeOther)
}

// loadCart returns the session cart, or nil after redirecting when there is
// nothing to check out.
func (h *CheckoutHandler) loadCart(c *fiber.Ctx) (*models.Cart, error) {
	cart, err := h.carts.GetCart(c.UserContext(), middleware.Session(c))
	if err != nil {
		return nil, h.serverError(c, "Could not load cart", err)
	}
	if cart == nil || cart.IsEmpty() {
		return nil, redirectHome(c)
	}
	return cart, nil
}

// HandleStepPage renders the information and payment steps.
func (h *CheckoutHandler) HandleStepPage(c *fiber.Ctx) error {
	cart, err := h.loadCart(c)
	if cart == nil {
		return err
	}
	return c.JSON(fiber.Map{
		"step": models.CheckoutStepForPath(c.Route().Path).String(),
		"cart": cart,
	})
}

// HandleShippingPage renders the shipping step with the applicable methods.
func (h *CheckoutHandler) HandleShippingPage(c *fiber.Ctx) error {
	cart, methods, err := h.carts.GetShippingPage(c.UserContext(), middleware.Session(c))
	if err != nil {
		if errors.Is(err, services.ErrNoCart) {
			return redirectHome(c)
		}
		return h.serverError(c, "Could not load shipping methods", err)
	}
	if cart == nil || cart.IsEmpty() {
		return redirectHome(c)
	}
	return c.JSON(fiber.Map{
		"step":            models.CheckoutStepShipping.String(),
		"cart":            cart,
		"shippingMethods": methods,
	})
}

// HandleConfirmation shows the order the session just placed.
func (h *CheckoutHandler) HandleConfirmation(c *fiber.Ctx) error {
	order, err := h.carts.GetConfirmationOrder(c.UserContext(), middleware.Session(c))
	if err != nil {
		if errors.Is(err, services.ErrNoOrder) {
			return redirectHome(c)
		}
		return h.serverError(c, "Could not load order", err)
	}

	firstName := ""
	if order.ShippingAddress != nil {
		firstName = order.ShippingAddress.FirstName
	}
	return c.JSON(fiber.Map{
		"step":        models.CheckoutStepConfirmation.String(),
		"orderNumber": order.OrderNumber,
		"firstName":   firstName,
		"order":       order,
	})
}

type stageFunc func(c *fiber.Ctx, sess *models.Session, values validation.FormValues) *services.FormActionState

// action runs a stage behind the progress controller of the posted page.
// Success redirects to the next step; failure answers 422 with the form
// errors so the page can show them.
func (h *CheckoutHandler) action(stage stageFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		values, err := formValues(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}

		// the matched route, so a trailing slash still resolves the step
		nav := &redirectNavigator{}
		progress := services.NewProgressController(c.Route().Path, nav)
		state := progress.Handle(stage(c, middleware.Session(c), values))
		if state == nil {
			return c.Redirect(nav.target, fiber.StatusSeeOther)
		}
		if errors.Is(state.Err, services.ErrNoCart) {
			return redirectHome(c)
		}

		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"step":        progress.CurrentStep().String(),
			"globalError": progress.GlobalError(),
			"errors":      state.Errors,
		})
	}
}

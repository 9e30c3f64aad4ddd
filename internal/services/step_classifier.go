package services

import "storefront/internal/models"

// CartCheckoutStep derives the furthest step a cart can resume at. Payment
// instruments never advance the cart past Payment.
func CartCheckoutStep(cart *models.Cart) models.CheckoutStep {
	if cart == nil {
		return models.CheckoutStepInformation
	}

	hasShippingAddress := cart.ShippingAddress != nil
	hasShippingMethod := cart.ShippingMethod != nil

	switch {
	case hasShippingAddress && hasShippingMethod:
		return models.CheckoutStepPayment
	case hasShippingAddress:
		return models.CheckoutStepShipping
	default:
		return models.CheckoutStepInformation
	}
}

// PathForCartCheckoutStep returns the route of CartCheckoutStep(cart).
func PathForCartCheckoutStep(cart *models.Cart) string {
	return CartCheckoutStep(cart).Route()
}

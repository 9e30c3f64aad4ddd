package services_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestCartCheckoutStep(t *testing.T) {
	address := &models.Address{FirstName: "Jane"}
	method := &models.ShippingMethod{ID: "001"}
	payment := []models.PaymentInstrument{{ID: "pi-1"}}

	tests := []struct {
		name string
		cart *models.Cart
		want models.CheckoutStep
		path string
	}{
		{"no cart", nil, models.CheckoutStepInformation, "/checkout/information"},
		{"empty cart", &models.Cart{}, models.CheckoutStepInformation, "/checkout/information"},
		{"method without address", &models.Cart{ShippingMethod: method}, models.CheckoutStepInformation, "/checkout/information"},
		{"address only", &models.Cart{ShippingAddress: address}, models.CheckoutStepShipping, "/checkout/shipping"},
		{"address and method", &models.Cart{ShippingAddress: address, ShippingMethod: method}, models.CheckoutStepPayment, "/checkout/payment"},
		{"payment present", &models.Cart{ShippingAddress: address, ShippingMethod: method, PaymentInstruments: payment}, models.CheckoutStepPayment, "/checkout/payment"},
		{"payment without method", &models.Cart{ShippingAddress: address, PaymentInstruments: payment}, models.CheckoutStepShipping, "/checkout/shipping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.CartCheckoutStep(tt.cart))
			assert.Equal(t, tt.path, services.PathForCartCheckoutStep(tt.cart))
		})
	}
}

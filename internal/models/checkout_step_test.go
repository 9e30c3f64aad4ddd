package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutStepForPath(t *testing.T) {
	tests := map[string]CheckoutStep{
		"/checkout/information":  CheckoutStepInformation,
		"/checkout/shipping":     CheckoutStepShipping,
		"/checkout/shipping/":    CheckoutStepShipping,
		"/checkout/payment/":     CheckoutStepPayment,
		"/checkout/confirmation": CheckoutStepConfirmation,
		"/checkout/unknown":      CheckoutStepInformation,
		"/":                      CheckoutStepInformation,
	}
	for path, want := range tests {
		assert.Equal(t, want, CheckoutStepForPath(path), path)
	}
}

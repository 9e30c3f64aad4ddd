package models

import "strings"

// CheckoutStep is one page of the checkout flow. Steps are totally ordered.
type CheckoutStep int

const (
	CheckoutStepInformation CheckoutStep = iota + 1
	CheckoutStepShipping
	CheckoutStepPayment
	CheckoutStepConfirmation
)

var checkoutStepRoutes = map[CheckoutStep]string{
	CheckoutStepInformation:  "/checkout/information",
	CheckoutStepShipping:     "/checkout/shipping",
	CheckoutStepPayment:      "/checkout/payment",
	CheckoutStepConfirmation: "/checkout/confirmation",
}

var checkoutStepNames = map[CheckoutStep]string{
	CheckoutStepInformation:  "information",
	CheckoutStepShipping:     "shipping",
	CheckoutStepPayment:      "payment",
	CheckoutStepConfirmation: "confirmation",
}

// Valid reports whether s is a member of the enumeration.
func (s CheckoutStep) Valid() bool {
	_, ok := checkoutStepRoutes[s]
	return ok
}

// Route returns the fixed path of the step, or "" for an invalid step.
func (s CheckoutStep) Route() string {
	return checkoutStepRoutes[s]
}

func (s CheckoutStep) String() string {
	if name, ok := checkoutStepNames[s]; ok {
		return name
	}
	return "unknown"
}

// CheckoutStepForPath maps a request path to its step, ignoring a trailing
// slash. Unknown paths fall back to Information.
func CheckoutStepForPath(path string) CheckoutStep {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	for step, route := range checkoutStepRoutes {
		if route == path {
			return step
		}
	}
	return CheckoutStepInformation
}

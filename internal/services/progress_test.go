package services_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/validation"

	"github.com/stretchr/testify/assert"
)

type recordingNavigator struct {
	pushed []string
}

func (n *recordingNavigator) Push(path string) {
	n.pushed = append(n.pushed, path)
}

func TestProgressController_CurrentStep(t *testing.T) {
	cases := map[string]models.CheckoutStep{
		"/checkout/information":  models.CheckoutStepInformation,
		"/checkout/shipping":     models.CheckoutStepShipping,
		"/checkout/payment":      models.CheckoutStepPayment,
		"/checkout/confirmation": models.CheckoutStepConfirmation,
		"/checkout":              models.CheckoutStepInformation,
		"/somewhere/else":        models.CheckoutStepInformation,
	}
	for path, want := range cases {
		p := services.NewProgressController(path, &recordingNavigator{})
		assert.Equal(t, want, p.CurrentStep(), path)
	}
}

func TestProgressController_GoToNextStep(t *testing.T) {
	nav := &recordingNavigator{}
	services.NewProgressController("/checkout/shipping", nav).GoToNextStep()
	assert.Equal(t, []string{"/checkout/payment"}, nav.pushed)

	nav = &recordingNavigator{}
	services.NewProgressController("/checkout/confirmation", nav).GoToNextStep()
	assert.Empty(t, nav.pushed)
}

func TestProgressController_GoToStep(t *testing.T) {
	nav := &recordingNavigator{}
	p := services.NewProgressController("/checkout/payment", nav)

	p.GoToStep(models.CheckoutStepInformation)
	p.GoToStep(models.CheckoutStep(9))

	assert.Equal(t, []string{"/checkout/information"}, nav.pushed)
}

func TestProgressController_Handle(t *testing.T) {
	nav := &recordingNavigator{}
	p := services.NewProgressController("/checkout/information", nav)

	failed := &services.FormActionState{Errors: validation.Errors{FormErrors: []string{"Postal code is invalid"}}}
	assert.Same(t, failed, p.Handle(failed))
	assert.Equal(t, "Postal code is invalid", p.GlobalError())
	assert.Empty(t, nav.pushed)

	fieldOnly := &services.FormActionState{Errors: validation.Errors{FieldErrors: validation.FieldErrors{"email": {"Email is required"}}}}
	p.Handle(fieldOnly)
	assert.Empty(t, p.GlobalError())
	assert.Empty(t, nav.pushed)

	assert.Nil(t, p.Handle(nil))
	assert.Equal(t, []string{"/checkout/shipping"}, nav.pushed)
}

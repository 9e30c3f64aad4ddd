package services

import "storefront/internal/models"

// Navigator moves the shopper to another checkout page.
type Navigator interface {
	Push(path string)
}

// ProgressController tracks where a shopper is in checkout and reacts to
// stage results: success moves on to the next step, a failure keeps the
// shopper on the page with its top-level message.
type ProgressController struct {
	current     models.CheckoutStep
	nav         Navigator
	globalError string
}

// NewProgressController derives the current step from the request path.
func NewProgressController(path string, nav Navigator) *ProgressController {
	return &ProgressController{
		current: models.CheckoutStepForPath(path),
		nav:     nav,
	}
}

func (p *ProgressController) CurrentStep() models.CheckoutStep {
	return p.current
}

// GoToNextStep navigates one step forward. There is nothing after
// Confirmation.
func (p *ProgressController) GoToNextStep() {
	next := p.current + 1
	if !next.Valid() {
		return
	}
	p.nav.Push(next.Route())
}

func (p *ProgressController) GoToStep(step models.CheckoutStep) {
	if !step.Valid() {
		return
	}
	p.nav.Push(step.Route())
}

func (p *ProgressController) GlobalError() string {
	return p.globalError
}

func (p *ProgressController) SetGlobalError(msg string) {
	p.globalError = msg
}

// Handle applies a stage result and returns it unchanged.
func (p *ProgressController) Handle(state *FormActionState) *FormActionState {
	if state == nil {
		p.GoToNextStep()
		return nil
	}
	p.SetGlobalError(state.GlobalError())
	return state
}

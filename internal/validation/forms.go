package validation

// AddressForm is the base address field set shared by shipping and billing.
type AddressForm struct {
	FirstName string `form:"firstName" validate:"required"`
	LastName  string `form:"lastName" validate:"required"`
	Address1  string `form:"address1" validate:"required"`
	Address2  string `form:"address2"`
	City      string `form:"city" validate:"required"`
	State     string `form:"state" validate:"required"`
	Zip       string `form:"zip" validate:"required"`
	Country   string `form:"country" validate:"required,len=2,alpha"`
	Phone     string `form:"phone" validate:"omitempty,phone"`
}

// InformationForm is the contact + shipping address step.
type InformationForm struct {
	AddressForm `form:",squash"`
	Email       string `form:"email" validate:"required,email"`
}

// ShippingMethodForm selects one of the applicable shipping methods.
type ShippingMethodForm struct {
	ShippingMethodID string `form:"shippingMethodId" validate:"required"`
}

// PaymentForm carries the card data. It is demo-only: the number is masked
// and the security code dropped before anything is persisted.
type PaymentForm struct {
	CardholderName        string `form:"cardholderName" validate:"required,alphaspace"`
	CardNumber            string `form:"cardNumber" validate:"required"`
	ExpirationMonth       string `form:"expirationMonth" validate:"required,len=2,number"`
	ExpirationYear        string `form:"expirationYear" validate:"required,len=4,number"`
	SecurityCode          string `form:"securityCode" validate:"required,number,min=3,max=4"`
	BillingSameAsShipping string `form:"billingSameAsShipping" validate:"omitempty,oneof=on"`
}

// SameBilling reports whether the billing address mirrors the shipping one.
func (f PaymentForm) SameBilling() bool {
	return f.BillingSameAsShipping == "on"
}

// BillingAddressPrefix namespaces billing fields inside the payment form.
const BillingAddressPrefix = "billingAddress"

var addressMessages = Messages{
	"firstName.required": "First name is required",
	"lastName.required":  "Last name is required",
	"address1.required":  "Address is required",
	"city.required":      "City is required",
	"state.required":     "State is required",
	"zip.required":       "Zip code is required",
	"country.required":   "Country is required",
	"country":            "Please select a valid country",
	"phone.phone":        "Please enter a valid phone number",
}

var emailMessages = Messages{
	"email.required": "Email is required",
	"email.email":    "Please enter a valid email address",
}

var paymentMessages = Messages{
	"cardholderName.required":   "Cardholder name is required",
	"cardholderName.alphaspace": "Cardholder name should only contain letters and spaces",
	"cardNumber.required":       "Card number is required",
	"expirationMonth.required":  "Expiration month is required",
	"expirationMonth":           "Expiration month must be 2 digits",
	"expirationYear.required":   "Expiration year is required",
	"expirationYear":            "Expiration year must be 4 digits",
	"securityCode.required":     "Security code is required",
	"securityCode.number":       "Security code must contain only numbers",
	"securityCode":              "Security code must be 3-4 digits",
}

// Stage schemas.
var (
	AddressSchema        = NewSchema[AddressForm](addressMessages)
	InformationSchema    = NewSchema[InformationForm](addressMessages, emailMessages)
	ShippingMethodSchema = NewSchema[ShippingMethodForm](Messages{
		"shippingMethodId.required": "Shipping method is required",
	})
	PaymentSchema        = NewSchema[PaymentForm](paymentMessages)
	BillingAddressSchema = AddressSchema.WithPrefix(BillingAddressPrefix)
)

package models

import "github.com/shopspring/decimal"

// Money is a decimal amount in a given ISO currency.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// NewMoney builds a Money from a float amount as returned by the commerce backend.
func NewMoney(amount float64, currency string) Money {
	return Money{Amount: decimal.NewFromFloat(amount), CurrencyCode: currency}
}

// Address is used for both shipping and billing.
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone,omitempty"`
}

// Image is a product image reference.
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// CartProduct is the catalog snapshot a line item points at.
type CartProduct struct {
	ID            string `json:"id"`
	Handle        string `json:"handle"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	FeaturedImage Image  `json:"featuredImage"`
}

// SelectedOption is a variation attribute chosen for a line item.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Merchandise is the purchasable variant referenced by a line item.
type Merchandise struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	SelectedOptions []SelectedOption `json:"selectedOptions"`
	Product         CartProduct      `json:"product"`
}

// LineItem is a single cart line.
type LineItem struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Cost        Money       `json:"cost"`
	Merchandise Merchandise `json:"merchandise"`
}

// ShippingMethod is a shipping option, either applicable or selected.
type ShippingMethod struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Price       *Money `json:"price,omitempty"`
	IsDefault   bool   `json:"isDefault,omitempty"`
}

// PaymentCard holds the masked card data kept on the basket. The full
// number and the security code never reach this struct.
type PaymentCard struct {
	CardType        string `json:"cardType"`
	MaskedNumber    string `json:"maskedNumber"`
	ExpirationMonth int    `json:"expirationMonth"`
	ExpirationYear  int    `json:"expirationYear"`
}

// PaymentInstrument is a payment method attached to the cart.
type PaymentInstrument struct {
	ID              string      `json:"id"`
	PaymentMethodID string      `json:"paymentMethodId"`
	Card            PaymentCard `json:"paymentCard"`
}

// CartCost is always fully populated except Shipping, which is only set
// once a shipping method has been chosen.
type CartCost struct {
	Subtotal Money  `json:"subtotalAmount"`
	Tax      Money  `json:"totalTaxAmount"`
	Total    Money  `json:"totalAmount"`
	Shipping *Money `json:"shippingAmount,omitempty"`
}

// Cart is the reshaped view of a commerce basket.
type Cart struct {
	ID                 string              `json:"id"`
	CheckoutURL        string              `json:"checkoutUrl"`
	CustomerEmail      string              `json:"customerEmail,omitempty"`
	Cost               CartCost            `json:"cost"`
	Lines              []LineItem          `json:"lines"`
	TotalQuantity      int                 `json:"totalQuantity"`
	ShippingAddress    *Address            `json:"shippingAddress,omitempty"`
	BillingAddress     *Address            `json:"billingAddress,omitempty"`
	ShippingMethod     *ShippingMethod     `json:"shippingMethod,omitempty"`
	PaymentInstruments []PaymentInstrument `json:"paymentInstruments,omitempty"`
}

// IsEmpty reports whether there is nothing to check out.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// Order is an immutable snapshot of a cart after it has been placed.
type Order struct {
	Cart
	OrderNumber string `json:"orderNumber"`
}

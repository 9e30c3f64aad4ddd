package commerce

import "time"

// DefaultShipmentID addresses the shopper's default shipment.
const DefaultShipmentID = "me"

// TokenResponse is returned by the guest login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	CustomerID  string `json:"customer_id"`
}

// OrderAddress is the backend address shape used for shipments and billing.
type OrderAddress struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Address1    string `json:"address1,omitempty"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city,omitempty"`
	StateCode   string `json:"stateCode,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

type OptionItem struct {
	OptionID      string `json:"optionId"`
	OptionValueID string `json:"optionValueId"`
}

// ProductItem is a basket line. Price is the line total.
type ProductItem struct {
	ItemID      string       `json:"itemId"`
	ProductID   string       `json:"productId"`
	ProductName string       `json:"productName"`
	Quantity    int          `json:"quantity"`
	BasePrice   float64      `json:"basePrice"`
	Price       float64      `json:"price"`
	OptionItems []OptionItem `json:"optionItems,omitempty"`
}

type ShippingMethod struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	Description  string   `json:"description,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	CurrencyCode string   `json:"currencyCode,omitempty"`
}

type ShippingMethodResult struct {
	DefaultShippingMethodID   string           `json:"defaultShippingMethodId"`
	ApplicableShippingMethods []ShippingMethod `json:"applicableShippingMethods"`
}

type Shipment struct {
	ShipmentID      string          `json:"shipmentId"`
	ShippingAddress *OrderAddress   `json:"shippingAddress,omitempty"`
	ShippingMethod  *ShippingMethod `json:"shippingMethod,omitempty"`
}

type PaymentCard struct {
	CardType        string `json:"cardType"`
	MaskedNumber    string `json:"maskedNumber"`
	ExpirationMonth int    `json:"expirationMonth"`
	ExpirationYear  int    `json:"expirationYear"`
}

type PaymentInstrument struct {
	PaymentInstrumentID string       `json:"paymentInstrumentId"`
	PaymentMethodID     string       `json:"paymentMethodId"`
	Amount              float64      `json:"amount"`
	PaymentCard         *PaymentCard `json:"paymentCard,omitempty"`
}

type CustomerInfo struct {
	CustomerID string `json:"customerId,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Basket is the raw basket document.
type Basket struct {
	BasketID            string              `json:"basketId"`
	Currency            string              `json:"currency,omitempty"`
	CustomerInfo        *CustomerInfo       `json:"customerInfo,omitempty"`
	BillingAddress      *OrderAddress       `json:"billingAddress,omitempty"`
	Shipments           []Shipment          `json:"shipments,omitempty"`
	ProductItems        []ProductItem       `json:"productItems,omitempty"`
	PaymentInstruments  []PaymentInstrument `json:"paymentInstruments,omitempty"`
	ProductSubTotal     float64             `json:"productSubTotal"`
	MerchandizeTotalTax float64             `json:"merchandizeTotalTax"`
	ShippingTotal       float64             `json:"shippingTotal"`
	OrderTotal          *float64            `json:"orderTotal,omitempty"`
}

// Order is a placed basket.
type Order struct {
	Basket
	OrderNo      string    `json:"orderNo"`
	Status       string    `json:"status"`
	CreationDate time.Time `json:"creationDate"`
}

type ImageRef struct {
	Alt         string `json:"alt"`
	Link        string `json:"link"`
	DisBaseLink string `json:"disBaseLink,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

type ImageGroup struct {
	ViewType string     `json:"viewType"`
	Images   []ImageRef `json:"images"`
}

// Product is the raw catalog product.
type Product struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	ShortDescription  string       `json:"shortDescription,omitempty"`
	PrimaryCategoryID string       `json:"primaryCategoryId,omitempty"`
	Currency          string       `json:"currency,omitempty"`
	Price             float64      `json:"price"`
	ImageGroups       []ImageGroup `json:"imageGroups,omitempty"`
}

type ProductItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type PaymentInstrumentRequest struct {
	Amount          float64     `json:"amount"`
	PaymentMethodID string      `json:"paymentMethodId"`
	PaymentCard     PaymentCard `json:"paymentCard"`
}

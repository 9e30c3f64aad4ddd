package commerce

import (
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

const (
	defaultCurrency = "USD"
	defaultCountry  = "US"
	checkoutURL     = "/checkout/information"
)

func currencyOf(b *Basket) string {
	if b.Currency != "" {
		return b.Currency
	}
	return defaultCurrency
}

// ReshapeShippingMethods flattens the applicable methods of a shipment.
func ReshapeShippingMethods(result *ShippingMethodResult) []models.ShippingMethod {
	if result == nil {
		return []models.ShippingMethod{}
	}
	methods := make([]models.ShippingMethod, 0, len(result.ApplicableShippingMethods))
	for _, m := range result.ApplicableShippingMethods {
		currency := m.CurrencyCode
		if currency == "" {
			currency = defaultCurrency
		}
		method := reshapeShippingMethod(m, currency)
		method.IsDefault = result.DefaultShippingMethodID == m.ID
		methods = append(methods, method)
	}
	return methods
}

func reshapeShippingMethod(m ShippingMethod, currency string) models.ShippingMethod {
	method := models.ShippingMethod{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
	}
	if m.Price != nil {
		price := models.NewMoney(*m.Price, currency)
		method.Price = &price
	}
	return method
}

// ReshapeProduct turns a catalog product into the snapshot kept on a line.
// The first "large" image, if any, becomes the featured image.
func ReshapeProduct(p *Product) models.CartProduct {
	product := models.CartProduct{
		ID:          p.ID,
		Handle:      p.ID,
		Title:       p.Name,
		Description: p.ShortDescription,
	}
	for _, group := range p.ImageGroups {
		if group.ViewType != "large" || len(group.Images) == 0 {
			continue
		}
		img := group.Images[0]
		url := img.DisBaseLink
		if url == "" {
			url = img.Link
		}
		product.FeaturedImage = models.Image{
			URL:     url,
			AltText: img.Alt,
			Width:   orDefault(img.Width, 800),
			Height:  orDefault(img.Height, 800),
		}
		break
	}
	return product
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// ReshapeProductItem builds a cart line from a basket item and the product
// it references.
func ReshapeProductItem(item ProductItem, currency string, product models.CartProduct) models.LineItem {
	options := make([]models.SelectedOption, 0, len(item.OptionItems))
	for _, o := range item.OptionItems {
		options = append(options, models.SelectedOption{Name: o.OptionID, Value: o.OptionValueID})
	}
	return models.LineItem{
		ID:       item.ItemID,
		Quantity: item.Quantity,
		Cost:     models.NewMoney(item.Price, currency),
		Merchandise: models.Merchandise{
			ID:              item.ProductID,
			Title:           item.ProductName,
			SelectedOptions: options,
			Product:         product,
		},
	}
}

// ReshapeBasket builds the storefront cart. Only the first shipment is
// considered.
func ReshapeBasket(b *Basket, lines []models.LineItem) *models.Cart {
	currency := currencyOf(b)

	var shipment *Shipment
	if len(b.Shipments) > 0 {
		shipment = &b.Shipments[0]
	}

	total := decimal.NewFromFloat(b.ProductSubTotal).Add(decimal.NewFromFloat(b.MerchandizeTotalTax))
	if b.OrderTotal != nil {
		total = decimal.NewFromFloat(*b.OrderTotal)
	}

	if lines == nil {
		lines = []models.LineItem{}
	}
	quantity := 0
	for _, l := range lines {
		quantity += l.Quantity
	}

	cart := &models.Cart{
		ID:          b.BasketID,
		CheckoutURL: checkoutURL,
		Cost: models.CartCost{
			Subtotal: models.NewMoney(b.ProductSubTotal, currency),
			Tax:      models.NewMoney(b.MerchandizeTotalTax, currency),
			Total:    models.Money{Amount: total, CurrencyCode: currency},
		},
		Lines:          lines,
		TotalQuantity:  quantity,
		BillingAddress: reshapeAddress(b.BillingAddress),
	}

	if shipment != nil {
		cart.ShippingAddress = reshapeAddress(shipment.ShippingAddress)
		if shipment.ShippingMethod != nil {
			method := reshapeShippingMethod(*shipment.ShippingMethod, currency)
			cart.ShippingMethod = &method
			amount := models.Money{Amount: decimal.Zero, CurrencyCode: currency}
			if method.Price != nil {
				amount = *method.Price
			}
			cart.Cost.Shipping = &amount
		}
	}

	if b.CustomerInfo != nil {
		cart.CustomerEmail = b.CustomerInfo.Email
	}

	for _, pi := range b.PaymentInstruments {
		instrument := models.PaymentInstrument{
			ID:              pi.PaymentInstrumentID,
			PaymentMethodID: pi.PaymentMethodID,
		}
		if pi.PaymentCard != nil {
			instrument.Card = models.PaymentCard{
				CardType:        pi.PaymentCard.CardType,
				MaskedNumber:    pi.PaymentCard.MaskedNumber,
				ExpirationMonth: pi.PaymentCard.ExpirationMonth,
				ExpirationYear:  pi.PaymentCard.ExpirationYear,
			}
		}
		cart.PaymentInstruments = append(cart.PaymentInstruments, instrument)
	}

	return cart
}

// ReshapeOrder builds the confirmation view of a placed order.
func ReshapeOrder(o *Order, lines []models.LineItem) *models.Order {
	cart := ReshapeBasket(&o.Basket, lines)
	cart.ID = o.OrderNo
	return &models.Order{Cart: *cart, OrderNumber: o.OrderNo}
}

func reshapeAddress(a *OrderAddress) *models.Address {
	if a == nil {
		return nil
	}
	country := a.CountryCode
	if country == "" {
		country = defaultCountry
	}
	return &models.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		State:     a.StateCode,
		Zip:       a.PostalCode,
		Country:   country,
		Phone:     a.Phone,
	}
}

// ToOrderAddress converts a storefront address into the backend shape.
func ToOrderAddress(a models.Address) OrderAddress {
	return OrderAddress{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Address1:    a.Address1,
		Address2:    a.Address2,
		City:        a.City,
		StateCode:   a.State,
		PostalCode:  a.Zip,
		CountryCode: a.Country,
		Phone:       a.Phone,
	}
}

package models

// Cookie names backing the guest session.
const (
	CookieGuestToken = "guest_token"
	CookieCartID     = "cartId"
	CookieOrderID    = "orderId"
)

// Session carries the short-lived guest credentials of one checkout. It is
// request scoped: handlers load it from cookies and write back whatever
// changed.
type Session struct {
	guestToken string
	cartID     string
	orderID    string
	dirty      map[string]bool
}

// NewSession builds a session from persisted values.
func NewSession(guestToken, cartID, orderID string) *Session {
	return &Session{
		guestToken: guestToken,
		cartID:     cartID,
		orderID:    orderID,
		dirty:      make(map[string]bool),
	}
}

func (s *Session) GuestToken() string { return s.guestToken }
func (s *Session) CartID() string     { return s.cartID }
func (s *Session) OrderID() string    { return s.orderID }

func (s *Session) SetGuestToken(token string) {
	s.guestToken = token
	s.dirty[CookieGuestToken] = true
}

func (s *Session) SetCartID(id string) {
	s.cartID = id
	s.dirty[CookieCartID] = true
}

// ClearCartID drops the cart reference, e.g. once its basket became an order.
func (s *Session) ClearCartID() {
	s.SetCartID("")
}

func (s *Session) SetOrderID(id string) {
	s.orderID = id
	s.dirty[CookieOrderID] = true
}

// Changed reports whether the named cookie must be written back.
func (s *Session) Changed(cookie string) bool {
	return s.dirty[cookie]
}

package middleware

import (
	"time"

	"storefront/internal/commerce"
	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const sessionLocalsKey = "session"

// SessionConfig configures the guest session cookies.
type SessionConfig struct {
	// GuestTokenTTL is used when the backend does not report a token lifetime.
	GuestTokenTTL time.Duration
	Secure        bool
}

// GuestSession loads the guest session from cookies, logs in a new guest
// when there is no token, and writes back every cookie the request changed.
func GuestSession(backend commerce.Backend, cfg SessionConfig, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := models.NewSession(
			c.Cookies(models.CookieGuestToken),
			c.Cookies(models.CookieCartID),
			c.Cookies(models.CookieOrderID),
		)

		tokenTTL := cfg.GuestTokenTTL
		if sess.GuestToken() == "" {
			resp, err := backend.LoginGuest(c.UserContext())
			if err != nil {
				log.Error("guest login failed", zap.Error(err))
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"message": "Could not start a guest session",
					"error":   err.Error(),
				})
			}
			sess.SetGuestToken(resp.AccessToken)
			if resp.ExpiresIn > 0 {
				tokenTTL = time.Duration(resp.ExpiresIn) * time.Second
			}
		}

		c.Locals(sessionLocalsKey, sess)
		err := c.Next()

		if sess.Changed(models.CookieGuestToken) {
			setCookie(c, models.CookieGuestToken, sess.GuestToken(), tokenTTL, cfg.Secure)
		}
		if sess.Changed(models.CookieCartID) {
			setCookie(c, models.CookieCartID, sess.CartID(), 0, cfg.Secure)
		}
		if sess.Changed(models.CookieOrderID) {
			setCookie(c, models.CookieOrderID, sess.OrderID(), 0, cfg.Secure)
		}
		return err
	}
}

// setCookie writes an httpOnly cookie, or expires it when value is empty.
// A zero ttl makes a session cookie.
func setCookie(c *fiber.Ctx, name, value string, ttl time.Duration, secure bool) {
	cookie := &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	switch {
	case value == "":
		cookie.Expires = time.Unix(0, 0)
	case ttl > 0:
		cookie.MaxAge = int(ttl.Seconds())
		cookie.Expires = time.Now().Add(ttl)
	}
	c.Cookie(cookie)
}

// Session returns the guest session loaded by GuestSession.
func Session(c *fiber.Ctx) *models.Session {
	sess, ok := c.Locals(sessionLocalsKey).(*models.Session)
	if !ok {
		return models.NewSession("", "", "")
	}
	return sess
}

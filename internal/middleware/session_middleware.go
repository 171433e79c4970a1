package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "storefront_session"
	sessionLocal  = "session_id"
)

// Session resolves the caller's session ID from the X-Session-ID header or
// the session cookie and issues a new one when neither carries a valid ID.
// The ID is echoed in the response header and cookie.
func Session(ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(SessionHeader)
		if id == "" {
			id = c.Cookies(SessionCookie)
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Locals(sessionLocal, id)
		c.Set(SessionHeader, id)
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(ttl / time.Second),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.Next()
	}
}

// SessionID returns the ID resolved by Session.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionLocal).(string)
	return id
}

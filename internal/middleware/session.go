package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CartCookieName = "cartSessionId"
	CtxCartSession = "cart_session"
	cartCookieTTL  = 30 * 24 * time.Hour
)

// CartSession makes sure every cart request carries an anonymous session id.
// A missing or malformed cartSessionId cookie is replaced by a fresh uuid,
// which is sent back with a 30 day lifetime.
func CartSession(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if ck, err := c.Cookie(CartCookieName); err == nil {
				if u, err := uuid.Parse(ck.Value); err == nil {
					id = u.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     CartCookieName,
					Value:    id,
					Path:     "/",
					Expires:  time.Now().Add(cartCookieTTL),
					MaxAge:   int(cartCookieTTL / time.Second),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(CtxCartSession, id)
			return next(c)
		}
	}
}

// CartSessionID returns the id stored by CartSession.
func CartSessionID(c echo.Context) string {
	s, _ := c.Get(CtxCartSession).(string)
	return s
}

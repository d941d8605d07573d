package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/immersive-venue-booking/internal/handler"
	"github.com/iliyamo/immersive-venue-booking/internal/middleware"
)

// RegisterCustomer registers the routes that act on behalf of one shopper.
// The cart works for guests too: OptionalJWT runs first so a logged-in user
// gets their own cart, and CartSession issues the cartSessionId cookie for
// everyone else.  secureCookie should be true whenever the API is served
// over TLS.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, cart *handler.CartHandler, jwtSecret string, secureCookie bool, limit echo.MiddlewareFunc) {
	e.GET("/api/my-bookings", b.Mine, middleware.JWTAuth(jwtSecret))

	g := e.Group("/api/cart",
		middleware.OptionalJWT(jwtSecret),
		middleware.CartSession(secureCookie),
	)
	g.GET("", cart.List)
	g.POST("", cart.Add, limit)
	g.DELETE("", cart.Clear)
	g.PUT("/:id", cart.Update, limit)
	g.DELETE("/:id", cart.Remove)
}

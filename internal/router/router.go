// Package router registers the API routes on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/immersive-venue-booking/internal/handler"
	"github.com/iliyamo/immersive-venue-booking/internal/middleware"
	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// RegisterRoutes registers the operational endpoints: the health check used
// by load balancers and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers the account endpoints.  Register, login and refresh
// are unauthenticated and sit behind the rate limiter.  Logout accepts either
// a refresh token in the body or a bearer token, so it only needs the
// optional JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register, limit)
	g.POST("/login", a.Login, limit)
	g.POST("/refresh", a.Refresh, limit)
	g.POST("/logout", a.Logout, middleware.OptionalJWT(jwtSecret))

	e.GET("/api/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the guest-facing endpoints.  Catalog reads go
// through the response cache; availability and bookings always read live
// counters and are never cached.  A bearer token is optional on booking
// routes: when present the booking is attached to the user.
func RegisterPublic(e *echo.Echo, b *handler.BookingHandler, cat *handler.CatalogHandler, jwtSecret string, cache, limit echo.MiddlewareFunc) {
	optional := middleware.OptionalJWT(jwtSecret)

	e.GET("/api/availability", b.Availability)
	e.POST("/api/bookings", b.Create, optional, limit)
	e.POST("/api/bookings/quote", b.Quote)
	e.GET("/api/bookings/:id", b.Get, optional)
	e.GET("/api/bookings/ref/:reference", b.GetByReference)
	e.PATCH("/api/bookings/:id/status", b.UpdateStatus,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	e.GET("/api/experiences", cat.ListExperiences, cache)
	e.GET("/api/experiences/:slug", cat.GetExperience, cache)
	e.GET("/api/venues", cat.ListVenues, cache)
	e.GET("/api/venues/:slug", cat.GetVenue, cache)
	e.GET("/api/venues/:slug/experiences", cat.VenueExperiences, cache)
	e.GET("/api/products", cat.ListProducts, cache)
	e.GET("/api/products/:slug", cat.GetProduct, cache)
	e.GET("/api/membership-tiers", cat.ListMembershipTiers, cache)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/immersive-venue-booking/internal/handler"
	"github.com/iliyamo/immersive-venue-booking/internal/middleware"
	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /api/admin.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/api/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Experiences ----
	g.POST("/experiences", a.CreateExperience)
	g.PUT("/experiences/:id", a.UpdateExperience)

	// ---- Venues ----
	g.POST("/venues", a.CreateVenue)
	g.PUT("/venues/:id", a.UpdateVenue)
	g.POST("/venues/:id/experiences", a.LinkExperience)

	// ---- Products ----
	g.POST("/products", a.CreateProduct)
	g.PUT("/products/:id", a.UpdateProduct)

	// ---- Slots ----
	g.POST("/slots", b.CreateSlot) // idempotent; 200 when the slot already existed
}

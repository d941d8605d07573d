package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/immersive-venue-booking/internal/middleware"
	"github.com/iliyamo/immersive-venue-booking/internal/model"
	"github.com/iliyamo/immersive-venue-booking/internal/service"
)

// BookingHandler exposes availability and the reservation engine.
type BookingHandler struct {
	Svc     *service.Reservations
	Timeout time.Duration
}

func NewBookingHandler(svc *service.Reservations, timeout time.Duration) *BookingHandler {
	if svc == nil {
		panic("nil reservation service passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc, Timeout: timeout}
}

// availabilityItem is one row of GET /api/availability.
type availabilityItem struct {
	ID          uint64 `json:"id"`
	Time        string `json:"time"`
	Capacity    int    `json:"capacity"`
	BookedCount int    `json:"bookedCount"`
}

// Availability handles GET /api/availability?venueId=&experienceId=&date=.
// An empty array means nothing is scheduled that day.
func (h *BookingHandler) Availability(c echo.Context) error {
	venueID, err := parseUintQuery(c, "venueId")
	if err != nil {
		return writeError(c, err)
	}
	experienceID, err := parseUintQuery(c, "experienceId")
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	slots, err := h.Svc.ListSlots(ctx, venueID, experienceID, c.QueryParam("date"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]availabilityItem, 0, len(slots))
	for _, s := range slots {
		out = append(out, availabilityItem{ID: s.ID, Time: s.Time, Capacity: s.Capacity, BookedCount: s.BookedCount})
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /api/bookings.  Logged-in callers get the booking
// attached to their account; guests book with contact details only.
func (h *BookingHandler) Create(c echo.Context) error {
	var req service.ReserveRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, CodeInvalidRequest, "malformed JSON body")
	}
	if uid, ok := middleware.UserID(c); ok {
		req.UserID = &uid
	}

	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	b, err := h.Svc.Reserve(ctx, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Quote handles POST /api/bookings/quote and prices a request without
// holding seats.
func (h *BookingHandler) Quote(c echo.Context) error {
	var req service.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, CodeInvalidRequest, "malformed JSON body")
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	q, err := h.Svc.Quote(ctx, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

// Get handles GET /api/bookings/:id.  Only the booking's owner and admins
// may read by id; guest bookings have no owner, so everyone else gets 404
// and must use the reference instead.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	b, err := h.Svc.GetBooking(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if middleware.Role(c) != model.RoleAdmin {
		uid, ok := middleware.UserID(c)
		if !ok || b.UserID == nil || uid != *b.UserID {
			return errorJSON(c, http.StatusNotFound, CodeNotFound, "resource not found")
		}
	}
	return c.JSON(http.StatusOK, b)
}

// GetByReference handles GET /api/bookings/ref/:reference.  The reference is
// an unguessable UUID returned when the booking is made.
func (h *BookingHandler) GetByReference(c echo.Context) error {
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	b, err := h.Svc.GetBookingByReference(ctx, c.Param("reference"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Mine handles GET /api/my-bookings.
func (h *BookingHandler) Mine(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, CodeUnauthorized, "login required")
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	items, err := h.Svc.ListUserBookings(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateStatus handles PATCH /api/bookings/:id/status (admin only).
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return errorJSON(c, http.StatusBadRequest, CodeInvalidRequest, "malformed JSON body")
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	b, err := h.Svc.UpdateStatus(ctx, id, body.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// CreateSlot handles POST /api/admin/slots.  Re-posting an existing slot
// returns it with 200 instead of 201.
func (h *BookingHandler) CreateSlot(c echo.Context) error {
	var req service.CreateSlotRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, CodeInvalidRequest, "malformed JSON body")
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	slot, created, err := h.Svc.CreateSlot(ctx, req)
	if err != nil {
		return writeError(c, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, slot)
}

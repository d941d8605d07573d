package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/immersive-venue-booking/internal/handler"
	"github.com/iliyamo/immersive-venue-booking/internal/logger"
	"github.com/iliyamo/immersive-venue-booking/internal/model"
	"github.com/iliyamo/immersive-venue-booking/internal/repository/memory"
	"github.com/iliyamo/immersive-venue-booking/internal/service"
	"github.com/iliyamo/immersive-venue-booking/internal/utils"
	"github.com/iliyamo/immersive-venue-booking/internal/validate"
)

const secret = "router-secret"

func noop(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	store := memory.New()
	store.AddExperience(model.Experience{ID: 2, Name: "Aurora Room", Slug: "aurora-room", Price: 2500})
	store.PutSlot(model.Slot{VenueID: 1, ExperienceID: 2, Date: "2026-12-01", Time: "10:00", Capacity: 8})

	svc := service.NewReservations(store, nil, logger.Nop())
	bookings := handler.NewBookingHandler(svc, 0)

	e := echo.New()
	e.Validator = &handler.EchoValidator{V: validate.New()}
	RegisterPublic(e, bookings, &handler.CatalogHandler{}, secret, noop, noop)
	RegisterCustomer(e, bookings, &handler.CartHandler{}, secret, false, noop)
	RegisterAdmin(e, &handler.AdminHandler{}, bookings, secret)
	RegisterAuth(e, &handler.AuthHandler{}, secret, noop)
	return e
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, 9, role, 5)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok.Token
}

func serve(e *echo.Echo, method, target, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutesRegistered(t *testing.T) {
	e := newServer(t)
	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /api/availability",
		"POST /api/bookings",
		"POST /api/bookings/quote",
		"GET /api/bookings/:id",
		"GET /api/bookings/ref/:reference",
		"PATCH /api/bookings/:id/status",
		"GET /api/my-bookings",
		"GET /api/experiences/:slug",
		"GET /api/venues/:slug/experiences",
		"GET /api/membership-tiers",
		"GET /api/cart",
		"PUT /api/cart/:id",
		"DELETE /api/cart",
		"POST /api/auth/register",
		"POST /api/auth/logout",
		"GET /api/me",
		"POST /api/admin/venues/:id/experiences",
		"POST /api/admin/slots",
	} {
		if !have[want] {
			t.Errorf("route %q not registered", want)
		}
	}
}

func TestAccessControl(t *testing.T) {
	e := newServer(t)
	customer := token(t, model.RoleCustomer)
	admin := token(t, model.RoleAdmin)
	slotBody := `{"venueId":1,"experienceId":2,"date":"2026-12-02","time":"11:00","capacity":6}`

	tests := []struct {
		name   string
		method string
		target string
		bearer string
		body   string
		want   int
	}{
		{"admin route without token", http.MethodPost, "/api/admin/slots", "", slotBody, http.StatusUnauthorized},
		{"admin route as customer", http.MethodPost, "/api/admin/slots", customer, slotBody, http.StatusForbidden},
		{"admin route as admin", http.MethodPost, "/api/admin/slots", admin, slotBody, http.StatusCreated},
		{"status change as customer", http.MethodPatch, "/api/bookings/1/status", customer, `{"status":"confirmed"}`, http.StatusForbidden},
		{"my bookings without token", http.MethodGet, "/api/my-bookings", "", "", http.StatusUnauthorized},
		{"my bookings as customer", http.MethodGet, "/api/my-bookings", customer, "", http.StatusOK},
		{"public availability", http.MethodGet, "/api/availability?venueId=1&experienceId=2&date=2026-12-01", "", "", http.StatusOK},
		{"garbage bearer on public booking", http.MethodGet, "/api/bookings/1", "nope", "", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(e, tc.method, tc.target, tc.bearer, tc.body)
			if rec.Code != tc.want {
				t.Errorf("%s %s = %d, want %d: %s", tc.method, tc.target, rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestBookingThroughRouter(t *testing.T) {
	e := newServer(t)
	body := `{"venueId":1,"experienceId":2,"date":"2026-12-01","time":"10:00","numberOfTickets":2,
		"ticketType":"standard","customerName":"Lea","customerEmail":"lea@example.com"}`

	rec := serve(e, http.MethodPost, "/api/bookings", token(t, model.RoleCustomer), body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	rec = serve(e, http.MethodGet, "/api/availability?venueId=1&experienceId=2&date=2026-12-01", "", "")
	if !strings.Contains(rec.Body.String(), `"bookedCount":2`) {
		t.Errorf("availability after booking: %s", rec.Body.String())
	}
	rec = serve(e, http.MethodGet, "/api/my-bookings", token(t, model.RoleCustomer), "")
	if !strings.Contains(rec.Body.String(), `"customerName":"Lea"`) {
		t.Errorf("my bookings: %s", rec.Body.String())
	}
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/immersive-venue-booking/internal/validate"
)

func newCatalogServer(cat *fakeCatalog, invalidated *int) *echo.Echo {
	e := echo.New()
	e.Validator = &EchoValidator{V: validate.New()}

	ch := &CatalogHandler{
		Experiences: fakeExperiences{cat},
		Venues:      fakeVenues{cat},
		Products:    fakeProducts{cat},
		Tiers:       cat,
	}
	e.GET("/api/experiences", ch.ListExperiences)
	e.GET("/api/experiences/:slug", ch.GetExperience)
	e.GET("/api/venues", ch.ListVenues)
	e.GET("/api/venues/:slug", ch.GetVenue)
	e.GET("/api/venues/:slug/experiences", ch.VenueExperiences)
	e.GET("/api/products", ch.ListProducts)
	e.GET("/api/products/:slug", ch.GetProduct)
	e.GET("/api/membership-tiers", ch.ListMembershipTiers)

	ah := &AdminHandler{
		Experiences: fakeExperiences{cat},
		Venues:      fakeVenues{cat},
		Products:    fakeProducts{cat},
		Invalidate: func(context.Context) error {
			*invalidated++
			return nil
		},
	}
	e.POST("/api/admin/experiences", ah.CreateExperience)
	e.PUT("/api/admin/experiences/:id", ah.UpdateExperience)
	e.POST("/api/admin/venues", ah.CreateVenue)
	e.PUT("/api/admin/venues/:id", ah.UpdateVenue)
	e.POST("/api/admin/venues/:id/experiences", ah.LinkExperience)
	e.POST("/api/admin/products", ah.CreateProduct)
	e.PUT("/api/admin/products/:id", ah.UpdateProduct)
	return e
}

func TestListExperiencesPaging(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		want     int
		page     int
		pageSize int
	}{
		{"defaults", "", http.StatusOK, 1, 20},
		{"zero page falls back to first", "page=0&pageSize=0", http.StatusOK, 1, 20},
		{"last allowed page", "page=10000&pageSize=100", http.StatusOK, 10000, 100},
		{"page past the limit", "page=10001", http.StatusBadRequest, 0, 0},
		{"page overflowing int", "page=9223372036854775807", http.StatusBadRequest, 0, 0},
		{"page beyond int64", "page=99999999999999999999", http.StatusBadRequest, 0, 0},
		{"non-numeric page", "page=two", http.StatusBadRequest, 0, 0},
		{"non-numeric page size", "pageSize=lots", http.StatusBadRequest, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cat := newFakeCatalog()
			var n int
			e := newCatalogServer(cat, &n)
			rec := do(e, http.MethodGet, "/api/experiences?"+tc.query, "")
			if rec.Code != tc.want {
				t.Fatalf("code = %d, want %d: %s", rec.Code, tc.want, rec.Body.String())
			}
			if tc.want != http.StatusOK {
				if errorCode(t, rec) != CodeInvalidRequest {
					t.Errorf("error = %s", rec.Body.String())
				}
				return
			}
			if q := cat.lastSearch; q.Page != tc.page || q.PageSize != tc.pageSize {
				t.Errorf("page/size = %d/%d, want %d/%d", q.Page, q.PageSize, tc.page, tc.pageSize)
			}
		})
	}
}

func TestListExperiencesFilters(t *testing.T) {
	cat := newFakeCatalog()
	var n int
	e := newCatalogServer(cat, &n)

	rec := do(e, http.MethodGet, "/api/experiences?name=moon&city=Boston&popular=true&maxPrice=40.5&page=2&pageSize=500", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rec.Code, rec.Body.String())
	}
	q := cat.lastSearch
	if q.Name != "moon" || q.City != "Boston" || q.Popular == nil || !*q.Popular || q.New != nil {
		t.Errorf("query = %+v", q)
	}
	if q.MaxPrice != 4050 || q.Page != 2 || q.PageSize != 100 {
		t.Errorf("price/paging = %d %d %d", q.MaxPrice, q.Page, q.PageSize)
	}
	var body struct {
		Data  []json.RawMessage `json:"data"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Total != 2 || len(body.Data) != 2 {
		t.Errorf("body = %s", rec.Body.String())
	}

	for _, bad := range []string{"popular=maybe", "maxPrice=abc", "maxPrice=1.999"} {
		if rec := do(e, http.MethodGet, "/api/experiences?"+bad, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: code = %d", bad, rec.Code)
		}
	}
}

func TestListExperiencesStorageError(t *testing.T) {
	cat := newFakeCatalog()
	cat.searchErr = errors.New("connection refused")
	var n int
	rec := do(newCatalogServer(cat, &n), http.MethodGet, "/api/experiences", "")
	if rec.Code != http.StatusInternalServerError || errorCode(t, rec) != CodeDatabase {
		t.Errorf("code = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCatalogLookups(t *testing.T) {
	var n int
	e := newCatalogServer(newFakeCatalog(), &n)

	tests := []struct {
		target string
		code   int
		want   string
	}{
		{"/api/experiences/moonwalk", http.StatusOK, `"price":32.00`},
		{"/api/experiences/nope", http.StatusNotFound, `"not_found"`},
		{"/api/venues", http.StatusOK, `"harbor-hall"`},
		{"/api/venues/harbor-hall", http.StatusOK, `"city":"Boston"`},
		{"/api/venues/harbor-hall/experiences", http.StatusOK, `"deep-sea-dome"`},
		{"/api/venues/nope/experiences", http.StatusNotFound, `"not_found"`},
		{"/api/products?category=kitchen", http.StatusOK, `"diver-mug"`},
		{"/api/products/star-map", http.StatusOK, `"inventory":3`},
		{"/api/membership-tiers", http.StatusOK, `"monthlyPrice":9.99`},
	}
	for _, tc := range tests {
		t.Run(tc.target, func(t *testing.T) {
			rec := do(e, http.MethodGet, tc.target, "")
			if rec.Code != tc.code || !strings.Contains(rec.Body.String(), tc.want) {
				t.Errorf("%d %s, want %d containing %s", rec.Code, rec.Body.String(), tc.code, tc.want)
			}
		})
	}
	if rec := do(e, http.MethodGet, "/api/products?category=kitchen", ""); strings.Contains(rec.Body.String(), "star-map") {
		t.Error("category filter ignored")
	}
}

func TestAdminCatalogWrites(t *testing.T) {
	cat := newFakeCatalog()
	var invalidated int
	e := newCatalogServer(cat, &invalidated)

	exp := `{"name":"Aurora Room","slug":"aurora-room","duration":30,"price":28.5,"minAge":6,"maxAge":99}`
	rec := do(e, http.MethodPost, "/api/admin/experiences", exp)
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"price":28.50`) {
		t.Fatalf("create experience: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodPost, "/api/admin/experiences", exp); rec.Code != http.StatusConflict {
		t.Errorf("duplicate slug: %d", rec.Code)
	}
	if rec := do(e, http.MethodPut, "/api/admin/experiences/3", strings.Replace(exp, "28.5", "30", 1)); rec.Code != http.StatusOK {
		t.Errorf("update: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodPut, "/api/admin/experiences/99", exp); rec.Code != http.StatusNotFound {
		t.Errorf("update missing: %d", rec.Code)
	}

	rec = do(e, http.MethodPost, "/api/admin/experiences", `{"name":"X","slug":"Bad Slug","duration":0}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != CodeInvalidRequest {
		t.Errorf("invalid: %d %s", rec.Code, rec.Body.String())
	}
	for _, field := range []string{"slug", "duration"} {
		if !strings.Contains(rec.Body.String(), `"field":"`+field+`"`) {
			t.Errorf("missing field error for %s: %s", field, rec.Body.String())
		}
	}

	venue := `{"name":"North Pier","slug":"north-pier","address":"1 Pier Rd","city":"Salem"}`
	if rec := do(e, http.MethodPost, "/api/admin/venues", venue); rec.Code != http.StatusCreated {
		t.Errorf("create venue: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodPost, "/api/admin/venues/2/experiences", `{"experienceId":1,"isExclusive":true}`); rec.Code != http.StatusCreated {
		t.Errorf("link: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodPost, "/api/admin/venues/2/experiences", `{"experienceId":42}`); rec.Code != http.StatusNotFound {
		t.Errorf("link unknown experience: %d", rec.Code)
	}

	product := `{"name":"Glow Pin","slug":"glow-pin","price":4,"category":"pins","inventory":50}`
	if rec := do(e, http.MethodPost, "/api/admin/products", product); rec.Code != http.StatusCreated {
		t.Errorf("create product: %d %s", rec.Code, rec.Body.String())
	}

	// create exp, update exp, create venue, link, create product
	if invalidated != 5 {
		t.Errorf("cache invalidated %d times, want 5", invalidated)
	}
}

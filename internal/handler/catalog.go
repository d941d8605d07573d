package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
	"github.com/iliyamo/immersive-venue-booking/internal/repository"
	"github.com/iliyamo/immersive-venue-booking/internal/validate"
)

// ExperienceStore is the experience catalog as the handlers use it.
// *repository.ExperienceRepo implements it.
type ExperienceStore interface {
	Search(ctx context.Context, q repository.ExperienceSearchQuery) ([]model.Experience, int64, error)
	GetByID(ctx context.Context, id uint64) (*model.Experience, error)
	GetBySlug(ctx context.Context, slug string) (*model.Experience, error)
	ListByVenue(ctx context.Context, venueID uint64) ([]model.Experience, error)
	Create(ctx context.Context, e *model.Experience) error
	Update(ctx context.Context, e *model.Experience) error
}

// VenueStore is implemented by *repository.VenueRepo.
type VenueStore interface {
	List(ctx context.Context) ([]model.Venue, error)
	GetByID(ctx context.Context, id uint64) (*model.Venue, error)
	GetBySlug(ctx context.Context, slug string) (*model.Venue, error)
	Create(ctx context.Context, v *model.Venue) error
	Update(ctx context.Context, v *model.Venue) error
	LinkExperience(ctx context.Context, venueID, experienceID uint64, exclusive bool) error
}

// ProductStore is implemented by *repository.ProductRepo.
type ProductStore interface {
	List(ctx context.Context, category string) ([]model.Product, error)
	GetByID(ctx context.Context, id uint64) (*model.Product, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
}

// MembershipStore is implemented by *repository.MembershipRepo.
type MembershipStore interface {
	List(ctx context.Context) ([]model.MembershipTier, error)
}

// CatalogHandler serves the read-only public catalog.  Its routes sit behind
// the Redis response cache.
type CatalogHandler struct {
	Experiences ExperienceStore
	Venues      VenueStore
	Products    ProductStore
	Tiers       MembershipStore
	Timeout     time.Duration
}

// ListExperiences handles GET /api/experiences.
//
// Query: name, city, popular, new, maxPrice (dollars), page, pageSize.
func (h *CatalogHandler) ListExperiences(c echo.Context) error {
	q := repository.ExperienceSearchQuery{
		Name: strings.TrimSpace(c.QueryParam("name")),
		City: strings.TrimSpace(c.QueryParam("city")),
	}
	var err error
	if q.Popular, err = boolQuery(c, "popular"); err != nil {
		return writeError(c, err)
	}
	if q.New, err = boolQuery(c, "new"); err != nil {
		return writeError(c, err)
	}
	if s := c.QueryParam("maxPrice"); s != "" {
		if q.MaxPrice, err = model.ParseDollars(s); err != nil || q.MaxPrice < 0 {
			return writeError(c, validate.Field("maxPrice", "must be a non-negative amount"))
		}
	}
	if q.Page, q.PageSize, err = pagination(c); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	items, total, err := h.Experiences.Search(ctx, q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":     items,
		"total":    total,
		"page":     q.Page,
		"pageSize": q.PageSize,
	})
}

// GetExperience handles GET /api/experiences/:slug.
func (h *CatalogHandler) GetExperience(c echo.Context) error {
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()
	e, err := h.Experiences.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// ListVenues handles GET /api/venues.
func (h *CatalogHandler) ListVenues(c echo.Context) error {
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()
	items, err := h.Venues.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// GetVenue handles GET /api/venues/:slug.
func (h *CatalogHandler) GetVenue(c echo.Context) error {
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()
	v, err := h.Venues.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// VenueExperiences handles GET /api/venues/:slug/experiences.
func (h *CatalogHandler) VenueExperiences(c echo.Context) error {
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()
	v, err := h.Venues.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	items, err := h.Experiences.ListByVenue(ctx, v.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// ListProducts handles GET /api/products?category=.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()
	items, err := h.Products.List(ctx, strings.TrimSpace(c.QueryParam("category")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// GetProduct handles GET /api/products/:slug.
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()
	p, err := h.Products.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// ListMembershipTiers handles GET /api/membership-tiers.
func (h *CatalogHandler) ListMembershipTiers(c echo.Context) error {
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()
	items, err := h.Tiers.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func boolQuery(c echo.Context, name string) (*bool, error) {
	s := c.QueryParam(name)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, validate.Field(name, "must be true or false")
	}
	return &b, nil
}

// pagination reads page/pageSize with defaults 1 and 20.  pageSize is capped
// at repository.MaxPageSize; a page beyond repository.MaxPage or a value
// that is not an integer is rejected.
func pagination(c echo.Context) (page, size int, err error) {
	page, size = 1, 20
	if s := c.QueryParam("page"); s != "" {
		if page, err = strconv.Atoi(s); err != nil || page > repository.MaxPage {
			return 0, 0, validate.Field("page", fmt.Sprintf("must be an integer no greater than %d", repository.MaxPage))
		}
		if page < 1 {
			page = 1
		}
	}
	if s := c.QueryParam("pageSize"); s != "" {
		if size, err = strconv.Atoi(s); err != nil {
			return 0, 0, validate.Field("pageSize", "must be an integer")
		}
		if size < 1 {
			size = 20
		}
		if size > repository.MaxPageSize {
			size = repository.MaxPageSize
		}
	}
	return page, size, nil
}

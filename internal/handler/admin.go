package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// AdminHandler manages catalog content.  Every successful write calls
// Invalidate so cached catalog responses are dropped.
type AdminHandler struct {
	Experiences ExperienceStore
	Venues      VenueStore
	Products    ProductStore
	Invalidate  func(ctx context.Context) error // may be nil
	Timeout     time.Duration
}

type experienceInput struct {
	Name             string      `json:"name" validate:"required,max=255"`
	Slug             string      `json:"slug" validate:"required,slug,max=255"`
	Description      string      `json:"description"`
	ShortDescription string      `json:"shortDescription" validate:"max=500"`
	Duration         int         `json:"duration" validate:"min=1"`
	Price            model.Money `json:"price" validate:"min=0"`
	MinAge           int         `json:"minAge" validate:"min=0"`
	MaxAge           int         `json:"maxAge" validate:"min=0"`
	Requirements     *string     `json:"requirements"`
	SpecialEquipment *string     `json:"specialEquipment"`
	ImageURL         string      `json:"imageUrl" validate:"max=512"`
	IsPopular        bool        `json:"isPopular"`
	IsNew            bool        `json:"isNew"`
}

func (in experienceInput) toModel(id uint64) *model.Experience {
	return &model.Experience{
		ID: id, Name: in.Name, Slug: in.Slug, Description: in.Description,
		ShortDescription: in.ShortDescription, Duration: in.Duration, Price: in.Price,
		MinAge: in.MinAge, MaxAge: in.MaxAge, Requirements: in.Requirements,
		SpecialEquipment: in.SpecialEquipment, ImageURL: in.ImageURL,
		IsPopular: in.IsPopular, IsNew: in.IsNew,
	}
}

type venueInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Slug        string `json:"slug" validate:"required,slug,max=255"`
	Address     string `json:"address" validate:"required,max=255"`
	City        string `json:"city" validate:"required,max=100"`
	State       string `json:"state" validate:"max=50"`
	ZipCode     string `json:"zipCode" validate:"max=20"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl" validate:"max=512"`
	IsNew       bool   `json:"isNew"`
}

func (in venueInput) toModel(id uint64) *model.Venue {
	return &model.Venue{
		ID: id, Name: in.Name, Slug: in.Slug, Address: in.Address, City: in.City,
		State: in.State, ZipCode: in.ZipCode, Description: in.Description,
		ImageURL: in.ImageURL, IsNew: in.IsNew,
	}
}

type productInput struct {
	Name        string      `json:"name" validate:"required,max=255"`
	Slug        string      `json:"slug" validate:"required,slug,max=255"`
	Description string      `json:"description"`
	Price       model.Money `json:"price" validate:"min=0"`
	ImageURL    string      `json:"imageUrl" validate:"max=512"`
	Category    string      `json:"category" validate:"required,max=100"`
	Inventory   int         `json:"inventory" validate:"min=0"`
}

func (in productInput) toModel(id uint64) *model.Product {
	return &model.Product{
		ID: id, Name: in.Name, Slug: in.Slug, Description: in.Description,
		Price: in.Price, ImageURL: in.ImageURL, Category: in.Category, Inventory: in.Inventory,
	}
}

// CreateExperience handles POST /api/admin/experiences.
func (h *AdminHandler) CreateExperience(c echo.Context) error {
	var in experienceInput
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	e := in.toModel(0)
	if err := h.Experiences.Create(ctx, e); err != nil {
		return writeError(c, err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusCreated, e)
}

// UpdateExperience handles PUT /api/admin/experiences/:id.
func (h *AdminHandler) UpdateExperience(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in experienceInput
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	e := in.toModel(id)
	if err := h.Experiences.Update(ctx, e); err != nil {
		return writeError(c, err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusOK, e)
}

// CreateVenue handles POST /api/admin/venues.
func (h *AdminHandler) CreateVenue(c echo.Context) error {
	var in venueInput
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	v := in.toModel(0)
	if err := h.Venues.Create(ctx, v); err != nil {
		return writeError(c, err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusCreated, v)
}

// UpdateVenue handles PUT /api/admin/venues/:id.
func (h *AdminHandler) UpdateVenue(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in venueInput
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	v := in.toModel(id)
	if err := h.Venues.Update(ctx, v); err != nil {
		return writeError(c, err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusOK, v)
}

// LinkExperience handles POST /api/admin/venues/:id/experiences.  Both the
// venue and the experience must exist.
func (h *AdminHandler) LinkExperience(c echo.Context) error {
	venueID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in struct {
		ExperienceID uint64 `json:"experienceId" validate:"required"`
		IsExclusive  bool   `json:"isExclusive"`
	}
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	if _, err := h.Venues.GetByID(ctx, venueID); err != nil {
		return writeError(c, err)
	}
	if _, err := h.Experiences.GetByID(ctx, in.ExperienceID); err != nil {
		return writeError(c, err)
	}
	if err := h.Venues.LinkExperience(ctx, venueID, in.ExperienceID, in.IsExclusive); err != nil {
		return writeError(c, err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusCreated, model.VenueExperience{
		VenueID: venueID, ExperienceID: in.ExperienceID, IsExclusive: in.IsExclusive,
	})
}

// CreateProduct handles POST /api/admin/products.
func (h *AdminHandler) CreateProduct(c echo.Context) error {
	var in productInput
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	p := in.toModel(0)
	if err := h.Products.Create(ctx, p); err != nil {
		return writeError(c, err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusCreated, p)
}

// UpdateProduct handles PUT /api/admin/products/:id.
func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in productInput
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	p := in.toModel(id)
	if err := h.Products.Update(ctx, p); err != nil {
		return writeError(c, err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusOK, p)
}

// invalidate drops the catalog cache.  A failure only means stale reads
// until the TTL expires, so it is logged and ignored.
func (h *AdminHandler) invalidate(ctx context.Context) {
	if h.Invalidate == nil {
		return
	}
	if err := h.Invalidate(ctx); err != nil {
		slog.WarnContext(ctx, "catalog cache invalidation failed", "error", err)
	}
}

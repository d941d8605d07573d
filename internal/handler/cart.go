package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/immersive-venue-booking/internal/middleware"
	"github.com/iliyamo/immersive-venue-booking/internal/model"
	"github.com/iliyamo/immersive-venue-booking/internal/pricing"
	"github.com/iliyamo/immersive-venue-booking/internal/validate"
)

// CartStore is implemented by *repository.CartRepo.
type CartStore interface {
	List(ctx context.Context, o model.CartOwner) ([]model.CartItem, error)
	Add(ctx context.Context, o model.CartOwner, it *model.CartItem) error
	UpdateQuantity(ctx context.Context, o model.CartOwner, id uint64, qty int) (*model.CartItem, error)
	Remove(ctx context.Context, o model.CartOwner, id uint64) error
	Clear(ctx context.Context, o model.CartOwner) (int64, error)
}

// CartHandler manages the shopping cart.  A logged-in user's cart is keyed
// by user id, an anonymous one by the cartSessionId cookie.  Concurrent
// edits of the same line are last-write-wins.
type CartHandler struct {
	Items       CartStore
	Products    ProductStore
	Experiences ExperienceStore
	Timeout     time.Duration
}

const maxCartQuantity = 99

// cartView is the GET /api/cart response.  Experience lines carry the
// booking fee; merchandise does not.
type cartView struct {
	Items      []model.CartItem `json:"items"`
	Subtotal   model.Money      `json:"subtotal"`
	BookingFee model.Money      `json:"bookingFee"`
	Total      model.Money      `json:"total"`
}

func summarize(items []model.CartItem) cartView {
	v := cartView{Items: items}
	var experiences model.Money
	for _, it := range items {
		line := it.Price * model.Money(it.Quantity)
		v.Subtotal += line
		if it.Type == model.CartExperience {
			experiences += line
		}
	}
	v.BookingFee = pricing.Fee(experiences)
	v.Total = v.Subtotal + v.BookingFee
	return v
}

func owner(c echo.Context) model.CartOwner {
	if uid, ok := middleware.UserID(c); ok {
		return model.CartOwner{UserID: uid}
	}
	return model.CartOwner{SessionID: middleware.CartSessionID(c)}
}

// List handles GET /api/cart.
func (h *CartHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()
	items, err := h.Items.List(ctx, owner(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, summarize(items))
}

type addToCartInput struct {
	Type         string `json:"type" validate:"required,oneof=product experience"`
	ProductID    uint64 `json:"productId" validate:"required_if=Type product"`
	ExperienceID uint64 `json:"experienceId" validate:"required_if=Type experience"`
	Quantity     int    `json:"quantity" validate:"min=1,max=99"`
}

// Add handles POST /api/cart.  The unit price is always read from the
// catalog, never from the request.
func (h *CartHandler) Add(c echo.Context) error {
	var in addToCartInput
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	it := &model.CartItem{Type: in.Type, Quantity: in.Quantity}
	switch in.Type {
	case model.CartProduct:
		p, err := h.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return writeError(c, err)
		}
		if p.Inventory < in.Quantity {
			return writeError(c, validate.Field("quantity", "exceeds available inventory"))
		}
		it.ProductID, it.Price = &p.ID, p.Price
	case model.CartExperience:
		e, err := h.Experiences.GetByID(ctx, in.ExperienceID)
		if err != nil {
			return writeError(c, err)
		}
		q, err := pricing.Quote(e.Price, model.TicketStandard, in.Quantity)
		if err != nil {
			return writeError(c, validate.Field("quantity", err.Error()))
		}
		it.ExperienceID, it.Price = &e.ID, q.UnitPrice
	}

	if err := h.Items.Add(ctx, owner(c), it); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, it)
}

// Update handles PUT /api/cart/:id with {"quantity": n}.
func (h *CartHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, CodeInvalidRequest, "malformed JSON body")
	}
	if in.Quantity < 1 || in.Quantity > maxCartQuantity {
		return writeError(c, validate.Field("quantity", "must be between 1 and 99"))
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	it, err := h.Items.UpdateQuantity(ctx, owner(c), id, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, it)
}

// Remove handles DELETE /api/cart/:id.
func (h *CartHandler) Remove(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()
	if err := h.Items.Remove(ctx, owner(c), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(c echo.Context) error {
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()
	n, err := h.Items.Clear(ctx, owner(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"removed": n})
}

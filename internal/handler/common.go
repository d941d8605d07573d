// Package handler holds the echo HTTP handlers for the public, customer and
// admin APIs.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/immersive-venue-booking/internal/repository"
	"github.com/iliyamo/immersive-venue-booking/internal/service"
	"github.com/iliyamo/immersive-venue-booking/internal/validate"
)

// DefaultTimeout bounds the database work of one request when the handler
// is built without an explicit timeout.
const DefaultTimeout = 5 * time.Second

// Error codes written in the "error" field of every error body.
const (
	CodeInvalidRequest = "invalid_request"
	CodeSlotNotFound   = "slot_not_found"
	CodeSoldOut        = "sold_out"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeDatabase       = "database_error"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
)

// EchoValidator plugs the request validator into echo so handlers can call
// c.Validate after c.Bind.
type EchoValidator struct {
	V *validate.Validator
}

func (ev *EchoValidator) Validate(i interface{}) error { return ev.V.Struct(i) }

// errorJSON writes {"error": code, "message": msg}.
func errorJSON(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"error": code, "message": msg})
}

// writeError maps a service or repository error to its HTTP response.
// Anything unrecognised is a 500 so storage failures never leak as 4xx.
func writeError(c echo.Context, err error) error {
	var ve validate.ValidationErrors
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": CodeInvalidRequest, "message": ve.Error(), "fields": ve})
	case errors.Is(err, service.ErrSlotNotFound):
		return errorJSON(c, http.StatusNotFound, CodeSlotNotFound, "no availability slot matches the requested date and time")
	case errors.Is(err, service.ErrCapacityExceeded):
		// 400, not 409: the client should pick another slot, not retry.
		return errorJSON(c, http.StatusBadRequest, CodeSoldOut, "not enough seats left for this time slot")
	case errors.Is(err, repository.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, CodeNotFound, "resource not found")
	case errors.Is(err, service.ErrInvalidTransition):
		return errorJSON(c, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrUsernameExists),
		errors.Is(err, repository.ErrConflict):
		return errorJSON(c, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, repository.ErrForbidden):
		return errorJSON(c, http.StatusForbidden, CodeForbidden, "resource belongs to someone else")
	}
	slog.ErrorContext(c.Request().Context(), "request failed",
		"method", c.Request().Method, "path", c.Path(), "error", err)
	return errorJSON(c, http.StatusInternalServerError, CodeDatabase, "internal error")
}

// bindAndValidate decodes the body into dst and runs the validator.
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return validate.Field("body", "malformed JSON")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(dst)
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, validate.Field(name, "must be a positive integer")
	}
	return id, nil
}

// parseUintQuery reads an optional numeric query parameter; "" yields 0.
func parseUintQuery(c echo.Context, name string) (uint64, error) {
	s := c.QueryParam(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, validate.Field(name, "must be a positive integer")
	}
	return n, nil
}

func requestContext(c echo.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(c.Request().Context(), d)
}

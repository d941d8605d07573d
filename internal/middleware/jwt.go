// Package middleware holds the echo middleware shared by the route groups.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/immersive-venue-booking/internal/utils"
)

// Context keys set by the auth middleware.
const (
	CtxUserID = "user_id" // uint64
	CtxRole   = "role"    // string
)

// JWTAuth rejects requests without a valid Bearer access token.  On success
// the user id and role are stored in the context under CtxUserID and CtxRole.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				return unauthorized(c, "missing bearer token")
			}
			if !authenticate(c, secret, raw) {
				return unauthorized(c, "invalid token")
			}
			return next(c)
		}
	}
}

// OptionalJWT identifies the caller when a token is present and lets
// anonymous requests through.  A token that is present but invalid is still
// rejected so a client never silently books as a guest by mistake.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				return next(c)
			}
			if !authenticate(c, secret, raw) {
				return unauthorized(c, "invalid token")
			}
			return next(c)
		}
	}
}

func bearer(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

func authenticate(c echo.Context, secret, raw string) bool {
	claims, err := utils.ParseAccessToken(secret, raw)
	if err != nil {
		return false
	}
	id, _ := claims.UserID() // already checked by ParseAccessToken
	c.Set(CtxUserID, id)
	c.Set(CtxRole, claims.Role)
	return true
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": msg})
}

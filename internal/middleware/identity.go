package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated user's id, or false for anonymous
// requests.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(CtxUserID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated user's role or "".
func Role(c echo.Context) string {
	r, _ := c.Get(CtxRole).(string)
	return r
}

// currentUserID is the rate-limit key component for the caller.
func currentUserID(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}

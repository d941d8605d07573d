package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports liveness plus the reachability of MySQL and Redis.
// Redis is optional, so its failure degrades the status without failing it.
type HealthHandler struct {
	DB    *sql.DB
	Redis *redis.Client
}

// Health handles GET /healthz.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	out := echo.Map{"status": "ok"}
	code := http.StatusOK
	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			out["status"], out["database"] = "down", err.Error()
			code = http.StatusServiceUnavailable
		} else {
			out["database"] = "ok"
		}
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			out["redis"] = err.Error()
			if code == http.StatusOK {
				out["status"] = "degraded"
			}
		} else {
			out["redis"] = "ok"
		}
	}
	return c.JSON(code, out)
}

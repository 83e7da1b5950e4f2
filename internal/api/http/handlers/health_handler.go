package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/quickdesk/ticket-engine/internal/persistence"
)

// HealthHandler exposes liveness and readiness endpoints.
type HealthHandler struct {
	db      *persistence.Postgres
	cache   *persistence.Redis
	version string
}

// NewHealthHandler constructs handler.
func NewHealthHandler(db *persistence.Postgres, cache *persistence.Redis, version string) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, version: version}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": h.version})
}

// Ready GET /health/ready. Reports degraded when a backing store is
// unreachable; redis is optional and never fails readiness on its own.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	if pool := h.db.PoolHandle(); pool != nil {
		if err := pool.Ping(c.UserContext()); err != nil {
			checks["postgres"] = "down"
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	} else {
		checks["postgres"] = "not_configured"
		healthy = false
	}

	if err := h.cache.Ping(c.UserContext()); err != nil {
		checks["redis"] = "down"
	} else {
		checks["redis"] = "ok"
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{"status": status, "checks": checks})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"relay-proxy-go/internal/config"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	cfg      *config.Config
	version  Version
	services *config.Services
}

// NewHealthHandler creates a HealthHandler. services is nil for the relay.
func NewHealthHandler(cfg *config.Config, v Version, services *config.Services) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: v, services: services}
}

// Healthz returns a simple OK response for liveness probes.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Status returns build and upstream settings, plus the configured service
// names when serving the router.
func (h *HealthHandler) Status(c echo.Context) error {
	body := map[string]any{
		"status":                   "ok",
		"version":                  string(h.version),
		"upstream_timeout_seconds": h.cfg.Upstream.TimeoutSeconds,
		"upstream_verify_tls":      h.cfg.Upstream.VerifyTLS,
	}
	if h.services != nil {
		body["services"] = h.services.Names()
	}
	return c.JSON(http.StatusOK, body)
}

// Package handler holds the Echo handlers of the relay and router binaries.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ServiceRoute is the catch-all route of the service router. Its requests and
// responses are relayed without the default security headers.
const ServiceRoute = "/:service/*"

// routerMethods are the verbs the service router accepts.
var routerMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
	http.MethodOptions,
}

// RegisterRelayRoutes wires the direct relay's routes onto the Echo instance.
func RegisterRelayRoutes(e *echo.Echo, relay *RelayHandler, health *HealthHandler) {
	e.GET("/healthz", health.Healthz)
	e.GET("/proxy/status", health.Status)

	e.POST("/proxy", relay.Handle)
}

// RegisterRouterRoutes wires the service router's routes onto the Echo
// instance. Static routes take precedence over service names.
func RegisterRouterRoutes(e *echo.Echo, router *RouterHandler, openid *OpenIDHandler, health *HealthHandler) {
	e.GET("/healthz", health.Healthz)
	e.GET("/router/status", health.Status)
	e.GET("/get_openid/", openid.Handle)

	e.Match(routerMethods, ServiceRoute, router.Handle)
}

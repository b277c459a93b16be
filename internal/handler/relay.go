package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"relay-proxy-go/internal/model"
	"relay-proxy-go/internal/service"
)

// secretParamPattern matches credential-like query parameter values in URLs embedded in error messages.
var secretParamPattern = regexp.MustCompile(`(?i)((?:api_?key|access_token|token|password|secret)=)[^&\s"]+`)

// RelayHandler serves the direct relay endpoint.
type RelayHandler struct {
	service *service.RelayService
	logger  *slog.Logger
}

// NewRelayHandler creates a RelayHandler.
func NewRelayHandler(svc *service.RelayService, logger *slog.Logger) *RelayHandler {
	return &RelayHandler{
		service: svc,
		logger:  logger.With("component", "relay_handler"),
	}
}

// Handle decodes a relay request, performs the upstream call and returns its JSON body.
func (h *RelayHandler) Handle(c echo.Context) error {
	rr := model.RelayRequest{Method: model.DefaultRelayMethod}

	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	if err := dec.Decode(&rr); err != nil {
		return detail(c, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request body: %v", err))
	}
	if err := rr.Validate(); err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}

	body, err := h.service.Relay(c.Request().Context(), &rr)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSONBlob(http.StatusOK, body)
}

func (h *RelayHandler) mapError(c echo.Context, err error) error {
	if errors.Is(err, service.ErrUnsupportedMethod) {
		return detail(c, http.StatusMethodNotAllowed, "Unsupported HTTP method")
	}

	var se *service.UpstreamStatusError
	if errors.As(err, &se) {
		h.logger.Warn("upstream error status", "status", se.StatusCode)
		return detail(c, se.StatusCode, "External API error: "+se.Body)
	}

	h.logger.Error("relay error", "err", sanitizeError(err))

	if errors.Is(err, service.ErrInvalidUpstreamBody) {
		return detail(c, http.StatusBadGateway, "upstream response is not valid JSON")
	}

	var te *service.TransportError
	if errors.As(err, &te) {
		return detail(c, http.StatusBadGateway, "Error connecting to "+sanitizeURL(te.URL))
	}

	return detail(c, http.StatusBadGateway, "upstream request failed")
}

// detail writes a {"detail": msg} JSON error body.
func detail(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"detail": msg})
}

// sanitizeError redacts credential-like query values from error messages that may contain upstream URLs.
func sanitizeError(err error) string {
	return sanitizeURL(err.Error())
}

func sanitizeURL(s string) string {
	return secretParamPattern.ReplaceAllString(s, "${1}[REDACTED]")
}

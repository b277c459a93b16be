package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"relay-proxy-go/internal/model"
	"relay-proxy-go/internal/service"
)

// RouterHandler forwards /{service}/{path} requests to configured services.
type RouterHandler struct {
	service *service.RouterService
	logger  *slog.Logger
}

// NewRouterHandler creates a RouterHandler.
func NewRouterHandler(svc *service.RouterService, logger *slog.Logger) *RouterHandler {
	return &RouterHandler{
		service: svc,
		logger:  logger.With("component", "router_handler"),
	}
}

// Handle proxies the request to the service named by the first path segment
// and writes the upstream status, headers and body back unmodified.
func (h *RouterHandler) Handle(c echo.Context) error {
	req := c.Request()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return c.String(http.StatusBadRequest, "failed to read request body")
	}

	path, rawPath := servicePath(req.URL, c.Param("*"))

	fr := &model.ForwardRequest{
		Ctx:     req.Context(),
		Method:  req.Method,
		Service: c.Param("service"),
		Path:    path,
		RawPath: rawPath,
		Query:   req.URL.Query(),
		Header:  req.Header,
		Body:    body,
	}

	resp, err := h.service.Forward(fr)
	if err != nil {
		return h.mapError(c, err)
	}

	// Upstream values replace any set by middleware.
	for key, vals := range resp.Header {
		c.Response().Header()[key] = vals
	}
	if _, ok := resp.Header["Content-Type"]; !ok {
		// A nil entry stops net/http from sniffing one.
		c.Response().Header()["Content-Type"] = nil
	}
	c.Response().WriteHeader(resp.StatusCode)

	if _, err := c.Response().Write(resp.Body); err != nil {
		h.logger.Error("writing response body",
			"err", err,
			"service", fr.Service,
		)
	}

	return nil
}

func (h *RouterHandler) mapError(c echo.Context, err error) error {
	var ue *service.UnknownServiceError
	if errors.As(err, &ue) {
		h.logger.Info("unknown service", "service", ue.Name)
		return c.String(http.StatusNotFound, fmt.Sprintf("Service '%s' not found", ue.Name))
	}

	h.logger.Error("proxy error",
		"err", sanitizeError(err),
		"path", c.Request().URL.Path,
	)

	var be *service.InvalidBaseURLError
	if errors.As(err, &be) {
		return c.String(http.StatusInternalServerError, fmt.Sprintf("Service '%s' is misconfigured", be.Service))
	}

	var te *service.TransportError
	if errors.As(err, &te) {
		return c.String(http.StatusBadGateway, "Error connecting to "+sanitizeURL(te.URL))
	}

	return c.String(http.StatusBadGateway, "upstream request failed")
}

// servicePath returns the part of u's path after the service segment, decoded
// and in its escaped form as received. fallback is used when the escaped form
// cannot be decoded.
func servicePath(u *url.URL, fallback string) (path, rawPath string) {
	_, rawPath, _ = strings.Cut(strings.TrimPrefix(u.EscapedPath(), "/"), "/")

	path, err := url.PathUnescape(rawPath)
	if err != nil {
		return fallback, ""
	}
	return path, rawPath
}

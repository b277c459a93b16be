package handler

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
)

// OpenIDHeader carries the caller's OpenID, injected by the hosting platform.
const OpenIDHeader = "X-Wx-Openid"

// OpenIDHandler echoes the caller's OpenID header.
type OpenIDHandler struct{}

// NewOpenIDHandler creates an OpenIDHandler.
func NewOpenIDHandler() *OpenIDHandler {
	return &OpenIDHandler{}
}

// Handle returns {"openid": <value>} or 422 when the header is absent.
func (h *OpenIDHandler) Handle(c echo.Context) error {
	openid := c.Request().Header.Get(OpenIDHeader)

	err := validation.Validate(openid,
		validation.Required.Error("missing required header x-wx-openid"),
	)
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"openid": openid})
}

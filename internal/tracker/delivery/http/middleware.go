package http

import (
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/utils"

	"github.com/labstack/echo/v4"
)

// RequestContext tags the request context with the X-Request-ID header, generating one
// when absent, so service logs can be correlated with a request.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = utils.NewID()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
			return next(c)
		}
	}
}

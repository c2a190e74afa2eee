package middleware

import (
	"github.com/evgo/dispatch/internal/pkg/requestcontext"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader carries the request ID in and out
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			c.Response().Header().Set(RequestIDHeader, requestID)
			c.Set("request_id", requestID)
			c.SetRequest(c.Request().WithContext(
				requestcontext.WithRequestID(c.Request().Context(), requestID)))

			return next(c)
		}
	}
}

// GetRequestID returns the request ID set by RequestIDMiddleware
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok {
		return id
	}
	return c.Response().Header().Get(RequestIDHeader)
}

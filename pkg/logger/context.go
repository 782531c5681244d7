package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const RequestIDKey = "X-Request-ID"

// FromContext returns the request-scoped logger the HTTP middleware stored
// on the context. Before the middleware has run (or outside a request) it
// falls back to the global logger tagged with whatever request id the
// request carried.
func FromContext(c echo.Context) *zap.Logger {
	if l, ok := c.Get("logger").(*zap.Logger); ok {
		return l
	}

	requestID, ok := c.Get(RequestIDKey).(string)
	if !ok {
		if requestID = c.Request().Header.Get(RequestIDKey); requestID == "" {
			requestID = "unknown"
		}
	}
	return GetLogger().With(zap.String("request_id", requestID))
}

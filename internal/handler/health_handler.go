package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthCheck returns service liveness
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "ok",
		"service": "dealhub",
	})
}

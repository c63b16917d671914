// Package handler contains the HTTP handlers of the service, grouped
// by surface: public browsing, member booking and admin management.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness endpoint used by load balancers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

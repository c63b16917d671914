package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-reservation/internal/booking"
	"github.com/iliyamo/coworking-reservation/internal/repository"
)

// respondError translates engine and repository errors into HTTP
// responses.  Validation problems are 400, scheduling and state
// conflicts are 409, promo rejections are 422 so clients can
// distinguish "fix your code" from "slot is gone".
func respondError(c echo.Context, err error) error {
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error(), "field": verr.Field})
	}
	var perr *booking.PromoInvalidError
	if errors.As(err, &perr) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": perr.Error(), "reason": perr.Reason})
	}
	var cerr *booking.ConflictError
	if errors.As(err, &cerr) {
		body := echo.Map{"error": cerr.Error()}
		if cerr.ConflictingID != 0 {
			body["conflicting_reservation_id"] = cerr.ConflictingID
		}
		return c.JSON(http.StatusConflict, body)
	}
	var serr *booking.InvalidStateError
	if errors.As(err, &serr) {
		return c.JSON(http.StatusConflict, echo.Map{"error": serr.Error(), "status": serr.From})
	}
	switch {
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	}
	c.Logger().Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// authedUserID extracts the user id stored by the JWT middleware.  The
// sub claim arrives as a float64 from the JSON decoder.
func authedUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// pathID parses a numeric :id path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a string form of the authenticated user id for
// rate-limit key construction, or "anon" for unauthenticated requests.
// JWTAuth stores the raw sub claim, which arrives as a float64 from the
// JSON decoder.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
		return "anon"
	case float64:
		return fmt.Sprintf("%.0f", v)
	case uint64:
		return fmt.Sprintf("%d", v)
	default:
		return "anon"
	}
}

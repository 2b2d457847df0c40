package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user's ID as a string for
// use in cache and rate-limit keys. JWTAuth stores the raw "sub" claim
// which arrives as a JSON number (float64); unauthenticated requests
// map to "anon".
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return "anon"
}

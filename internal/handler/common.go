// Package handler contains the HTTP handlers. Handlers bind and
// validate input, call repositories or the booking service, and map
// domain errors to status codes. Business rules live below this layer.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/reservation"
)

// getUserID extracts the authenticated user's ID from the context. The
// JWT middleware stores the raw "sub" claim, which arrives as a JSON
// number (float64) or occasionally a string.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), nil
	case uint64:
		return v, nil
	case int64:
		return uint64(v), nil
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("no user in context")
}

// bookingRef parses the :reference path parameter.
func bookingRef(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("reference"))
}

// bookingError maps reservation and repository errors onto HTTP
// responses. Capacity conflicts include the remaining seat count so
// clients can re-render availability without another round trip.
func bookingError(c echo.Context, err error) error {
	var capErr *reservation.InsufficientCapacityError
	switch {
	case errors.Is(err, reservation.ErrInvalidSeatCount):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "seats must be a positive integer"})
	case errors.As(err, &capErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":           "not enough seats available",
			"available_seats": capErr.Available,
		})
	case errors.Is(err, reservation.ErrTravelOptionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "travel option not found"})
	case errors.Is(err, reservation.ErrBookingNotFound), errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, reservation.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	case errors.Is(err, reservation.ErrWindowClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "cancellation window closed"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/reservation"
	"github.com/iliyamo/travel-booking/internal/service"
)

// BookingHandler exposes the booking lifecycle to customers. All
// routes run behind JWT auth; capacity and ownership decisions happen
// in the service and engine, never here.
type BookingHandler struct {
	Bookings *service.BookingService
}

func NewBookingHandler(s *service.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: s}
}

type createBookingReq struct {
	TravelOptionID uint64 `json:"travel_option_id"`
	Seats          int    `json:"seats"`
}

type cancelReq struct {
	Reason string `json:"reason"`
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TravelOptionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "travel_option_id is required"})
	}

	b, err := h.Bookings.Book(c.Request().Context(), userID, req.TravelOptionID, req.Seats)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// ListMine handles GET /v1/bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": len(items)})
}

// Get handles GET /v1/bookings/:reference.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ref, err := bookingRef(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking reference"})
	}
	b, err := h.Bookings.GetForUser(c.Request().Context(), userID, ref)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Quote handles GET /v1/bookings/:reference/cancel-quote. It previews
// the refund without cancelling.
func (h *BookingHandler) Quote(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ref, err := bookingRef(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking reference"})
	}
	q, err := h.Bookings.Quote(c.Request().Context(), userID, ref)
	if err != nil {
		if errors.Is(err, reservation.ErrAlreadyCancelled) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking already cancelled"})
		}
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

// Cancel handles POST /v1/bookings/:reference/cancel. Cancelling an
// already-cancelled booking is reported as success: the caller's
// desired state holds and nothing was double-refunded.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ref, err := bookingRef(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking reference"})
	}
	var req cancelReq
	_ = c.Bind(&req)

	b, err := h.Bookings.Cancel(c.Request().Context(), userID, ref, strings.TrimSpace(req.Reason))
	if err != nil {
		if errors.Is(err, reservation.ErrAlreadyCancelled) {
			return c.JSON(http.StatusOK, echo.Map{
				"detail":    "booking already cancelled",
				"reference": ref.String(),
			})
		}
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// AdminTravelHandler manages the travel catalogue. All routes require
// the ADMIN role. Seat inventory is set once at creation; afterwards
// only the reservation engine may move the counter.
type AdminTravelHandler struct {
	Travel *repository.TravelRepo
}

func NewAdminTravelHandler(t *repository.TravelRepo) *AdminTravelHandler {
	return &AdminTravelHandler{Travel: t}
}

type travelReq struct {
	TravelID       string `json:"travel_id"`
	Kind           string `json:"kind"`
	Source         string `json:"source"`
	Destination    string `json:"destination"`
	DepartureAt    string `json:"departure_at"` // RFC 3339
	Price          string `json:"price"`
	AvailableSeats int    `json:"available_seats"`
}

func (req *travelReq) toModel() (*model.TravelOption, string) {
	kind := model.TravelKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	if !kind.Valid() {
		return nil, "kind must be FLIGHT, TRAIN or BUS"
	}
	travelID := strings.TrimSpace(req.TravelID)
	src := strings.TrimSpace(req.Source)
	dst := strings.TrimSpace(req.Destination)
	if travelID == "" || src == "" || dst == "" {
		return nil, "travel_id, source and destination are required"
	}
	dep, err := time.Parse(time.RFC3339, strings.TrimSpace(req.DepartureAt))
	if err != nil {
		return nil, "departure_at must be RFC 3339"
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || price.IsNegative() {
		return nil, "price must be a non-negative decimal"
	}
	if req.AvailableSeats < 0 {
		return nil, "available_seats must not be negative"
	}
	return &model.TravelOption{
		TravelID:       travelID,
		Kind:           kind,
		Source:         src,
		Destination:    dst,
		DepartureAt:    dep.UTC(),
		Price:          price.Round(2),
		AvailableSeats: req.AvailableSeats,
	}, ""
}

// Create handles POST /v1/admin/travel-options.
func (h *AdminTravelHandler) Create(c echo.Context) error {
	var req travelReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	opt, msg := req.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Travel.Create(c.Request().Context(), opt); err != nil {
		if errors.Is(err, repository.ErrTravelIDExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "travel_id already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, opt)
}

// Update handles PUT /v1/admin/travel-options/:id. The seat counter is
// deliberately not updatable here.
func (h *AdminTravelHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid travel option id"})
	}
	var req travelReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	opt, msg := req.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	opt.ID = id
	if err := h.Travel.Update(c.Request().Context(), opt); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "travel option not found"})
		case errors.Is(err, repository.ErrTravelIDExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "travel_id already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	fresh, err := h.Travel.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, fresh)
}

// Delete handles DELETE /v1/admin/travel-options/:id. Options with
// bookings (any status) are protected; history must stay auditable.
func (h *AdminTravelHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid travel option id"})
	}
	if err := h.Travel.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "travel option not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "travel option has bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

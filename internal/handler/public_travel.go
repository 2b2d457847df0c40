package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// TravelHandler serves the public travel catalogue. Everything here is
// read-only and safe to cache; availability counts shown to anonymous
// browsers are advisory, the booking path re-checks under lock.
type TravelHandler struct {
	Travel *repository.TravelRepo
}

func NewTravelHandler(t *repository.TravelRepo) *TravelHandler {
	return &TravelHandler{Travel: t}
}

type travelListResp struct {
	Items []model.TravelOption `json:"items"`
	Total int                  `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// List handles GET /v1/travel-options. Supported query parameters:
// kind, source, destination, date (YYYY-MM-DD), q (free text over
// travel_id/source/destination), page, limit.
func (h *TravelHandler) List(c echo.Context) error {
	f := repository.TravelFilter{
		Source:      strings.TrimSpace(c.QueryParam("source")),
		Destination: strings.TrimSpace(c.QueryParam("destination")),
		Date:        strings.TrimSpace(c.QueryParam("date")),
		Query:       strings.TrimSpace(c.QueryParam("q")),
	}
	if kind := strings.ToUpper(strings.TrimSpace(c.QueryParam("kind"))); kind != "" {
		k := model.TravelKind(kind)
		if !k.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "kind must be FLIGHT, TRAIN or BUS"})
		}
		f.Kind = k
	}
	if p := c.QueryParam("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			f.Page = n
		}
	}
	if l := c.QueryParam("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			f.Limit = n
		}
	}

	items, total, err := h.Travel.Search(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}
	return c.JSON(http.StatusOK, travelListResp{Items: items, Total: total, Page: page, Limit: limit})
}

// Detail handles GET /v1/travel-options/:id.
func (h *TravelHandler) Detail(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid travel option id"})
	}
	opt, err := h.Travel.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "travel option not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, opt)
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/repository"
)

// AdminStatsHandler serves the read-only dashboard aggregates.
type AdminStatsHandler struct {
	Stats *repository.StatsRepo
}

func NewAdminStatsHandler(s *repository.StatsRepo) *AdminStatsHandler {
	return &AdminStatsHandler{Stats: s}
}

// Overview handles GET /v1/admin/stats.
func (h *AdminStatsHandler) Overview(c echo.Context) error {
	o, err := h.Stats.Load(c.Request().Context(), time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats query failed"})
	}
	return c.JSON(http.StatusOK, o)
}

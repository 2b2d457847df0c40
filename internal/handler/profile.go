package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// ProfileHandler serves the authenticated user's profile.
type ProfileHandler struct {
	Profiles *repository.ProfileRepo
}

func NewProfileHandler(p *repository.ProfileRepo) *ProfileHandler {
	return &ProfileHandler{Profiles: p}
}

// Get handles GET /v1/profile. A missing row is healed on the fly so
// accounts created before the profile table existed still work.
func (h *ProfileHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	p, err := h.Profiles.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		if err := h.Profiles.CreateDefault(ctx, userID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create profile failed"})
		}
		p, err = h.Profiles.GetByUserID(ctx, userID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, p)
}

type profileReq struct {
	PhoneNumber   string `json:"phone_number"`
	DateOfBirth   string `json:"date_of_birth"` // YYYY-MM-DD, empty clears
	AddressLine1  string `json:"address_line1"`
	AddressLine2  string `json:"address_line2"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	PostalCode    string `json:"postal_code"`
	PreferredKind string `json:"preferred_kind"` // FLIGHT, TRAIN, BUS or ANY
	Newsletter    bool   `json:"newsletter"`
}

// Update handles PUT /v1/profile with full replacement semantics.
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	preferred := strings.ToUpper(strings.TrimSpace(req.PreferredKind))
	switch preferred {
	case "", "ANY":
		preferred = "ANY"
	default:
		if !model.TravelKind(preferred).Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "preferred_kind must be FLIGHT, TRAIN, BUS or ANY"})
		}
	}

	var dob *time.Time
	if s := strings.TrimSpace(req.DateOfBirth); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date_of_birth must be YYYY-MM-DD"})
		}
		dob = &t
	}

	p := &model.Profile{
		UserID:        userID,
		PhoneNumber:   strings.TrimSpace(req.PhoneNumber),
		DateOfBirth:   dob,
		AddressLine1:  strings.TrimSpace(req.AddressLine1),
		AddressLine2:  strings.TrimSpace(req.AddressLine2),
		City:          strings.TrimSpace(req.City),
		State:         strings.TrimSpace(req.State),
		Country:       strings.TrimSpace(req.Country),
		PostalCode:    strings.TrimSpace(req.PostalCode),
		PreferredKind: preferred,
		Newsletter:    req.Newsletter,
	}
	ctx := c.Request().Context()
	err = h.Profiles.Update(ctx, p)
	if errors.Is(err, repository.ErrNotFound) {
		if err = h.Profiles.CreateDefault(ctx, userID); err == nil {
			err = h.Profiles.Update(ctx, p)
		}
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, p)
}

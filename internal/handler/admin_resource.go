package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

type resourceReq struct {
	Name             string `json:"name"`
	Type             string `json:"type"`
	Capacity         uint32 `json:"capacity"`
	HourlyRateCents  int64  `json:"hourly_rate_cents"`
	DailyRateCents   int64  `json:"daily_rate_cents"`
	MonthlyRateCents int64  `json:"monthly_rate_cents"`
	Available        *bool  `json:"available"`
}

func (req *resourceReq) validate() (string, bool) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name required", false
	}
	switch req.Type {
	case model.ResourceOpenDesk, model.ResourceBooth, model.ResourceMeetingRoom:
	default:
		return "type must be open-desk, booth or meeting-room", false
	}
	if req.Capacity == 0 {
		return "capacity must be at least 1", false
	}
	if req.HourlyRateCents < 0 || req.DailyRateCents < 0 || req.MonthlyRateCents < 0 {
		return "rates must not be negative", false
	}
	if req.HourlyRateCents == 0 && req.DailyRateCents == 0 && req.MonthlyRateCents == 0 {
		return "at least one rate tier required", false
	}
	return "", true
}

// CreateResource registers a new bookable unit.
func (h *AdminHandler) CreateResource(c echo.Context) error {
	var req resourceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	res := &model.Resource{
		Name:             req.Name,
		Type:             req.Type,
		Capacity:         req.Capacity,
		HourlyRateCents:  req.HourlyRateCents,
		DailyRateCents:   req.DailyRateCents,
		MonthlyRateCents: req.MonthlyRateCents,
		Available:        true,
	}
	if req.Available != nil {
		res.Available = *req.Available
	}
	if err := h.Resources.Create(c.Request().Context(), res); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toResourceResp(res))
}

// UpdateResource overwrites a resource's mutable fields.
func (h *AdminHandler) UpdateResource(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req resourceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	res, err := h.Resources.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	res.Name = req.Name
	res.Type = req.Type
	res.Capacity = req.Capacity
	res.HourlyRateCents = req.HourlyRateCents
	res.DailyRateCents = req.DailyRateCents
	res.MonthlyRateCents = req.MonthlyRateCents
	if req.Available != nil {
		res.Available = *req.Available
	}
	if err := h.Resources.Update(ctx, res); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toResourceResp(res))
}

type availabilityReq struct {
	Available bool `json:"available"`
}

// SetResourceAvailability flips the available flag.  Disabling stops
// new bookings while keeping existing reservations intact.
func (h *AdminHandler) SetResourceAvailability(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req availabilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Resources.SetAvailability(c.Request().Context(), id, req.Available); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "available": req.Available})
}

// DeleteResource removes a never-reserved resource.  A resource with
// reservation history refuses deletion; disable it instead.
func (h *AdminHandler) DeleteResource(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Resources.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

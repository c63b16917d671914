package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

type planReq struct {
	Name          string `json:"name"`
	PriceCents    int64  `json:"price_cents"`
	DurationDays  uint32 `json:"duration_days"`
	IncludedHours uint32 `json:"included_hours"`
	Active        *bool  `json:"active"`
}

// CreatePlan registers a subscription plan members can enroll in.
func (h *AdminHandler) CreatePlan(c echo.Context) error {
	var req planReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if req.PriceCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}
	if req.DurationDays == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration_days must be at least 1"})
	}
	if req.IncludedHours == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "included_hours must be at least 1"})
	}
	p := &model.SubscriptionPlan{
		Name:          req.Name,
		PriceCents:    req.PriceCents,
		DurationDays:  req.DurationDays,
		IncludedHours: req.IncludedHours,
		Active:        true,
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if err := h.Subscriptions.CreatePlan(c.Request().Context(), p); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toPlanResp(p))
}

// ListAllPlans returns every plan including inactive ones.
func (h *AdminHandler) ListAllPlans(c echo.Context) error {
	list, err := h.Subscriptions.ListPlans(c.Request().Context(), false)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]planResp, 0, len(list))
	for i := range list {
		out = append(out, toPlanResp(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-reservation/internal/booking"
	"github.com/iliyamo/coworking-reservation/internal/model"
	"github.com/iliyamo/coworking-reservation/internal/pricing"
	"github.com/iliyamo/coworking-reservation/internal/repository"
)

// PublicHandler serves the unauthenticated browsing surface: resource
// listings, price quotes and availability probes.
type PublicHandler struct {
	Resources *repository.ResourceRepo
	Plans     *repository.SubscriptionRepo
	Booking   *booking.Service
}

func NewPublicHandler(res *repository.ResourceRepo, plans *repository.SubscriptionRepo, b *booking.Service) *PublicHandler {
	return &PublicHandler{Resources: res, Plans: plans, Booking: b}
}

type resourceResp struct {
	ID               uint64 `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Capacity         uint32 `json:"capacity"`
	HourlyRateCents  int64  `json:"hourly_rate_cents"`
	DailyRateCents   int64  `json:"daily_rate_cents,omitempty"`
	MonthlyRateCents int64  `json:"monthly_rate_cents,omitempty"`
	Available        bool   `json:"available"`
}

func toResourceResp(r *model.Resource) resourceResp {
	return resourceResp{
		ID:               r.ID,
		Name:             r.Name,
		Type:             r.Type,
		Capacity:         r.Capacity,
		HourlyRateCents:  r.HourlyRateCents,
		DailyRateCents:   r.DailyRateCents,
		MonthlyRateCents: r.MonthlyRateCents,
		Available:        r.Available,
	}
}

// ListResources returns the bookable resources.  Pass ?all=1 to include
// disabled ones.
func (h *PublicHandler) ListResources(c echo.Context) error {
	onlyAvailable := c.QueryParam("all") == ""
	list, err := h.Resources.List(c.Request().Context(), onlyAvailable)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]resourceResp, 0, len(list))
	for i := range list {
		out = append(out, toResourceResp(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetResource returns one resource.
func (h *PublicHandler) GetResource(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	r, err := h.Resources.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toResourceResp(r))
}

// CheckAvailability probes whether a window is currently bookable and
// quotes its base price.  The answer is advisory; the booking path
// re-checks under lock.
func (h *PublicHandler) CheckAvailability(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	start, err := time.Parse(time.RFC3339, c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from, want RFC3339"})
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to, want RFC3339"})
	}

	conflictID, err := h.Booking.CheckAvailability(c.Request().Context(), id, start, end)
	if err != nil {
		var cerr *booking.ConflictError
		if errors.As(err, &cerr) {
			body := echo.Map{"available": false, "reason": cerr.Reason}
			if conflictID != 0 {
				body["conflicting_reservation_id"] = conflictID
			}
			return c.JSON(http.StatusOK, body)
		}
		return respondError(c, err)
	}

	res, err := h.Resources.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	quote, err := pricing.Quote(res, start.UTC(), end.UTC())
	if err != nil {
		return respondError(c, &booking.ValidationError{Field: "interval", Reason: err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"available": true, "base_price_cents": quote})
}

type planResp struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	PriceCents    int64  `json:"price_cents"`
	DurationDays  uint32 `json:"duration_days"`
	IncludedHours uint32 `json:"included_hours"`
	Active        bool   `json:"active"`
}

func toPlanResp(p *model.SubscriptionPlan) planResp {
	return planResp{
		ID:            p.ID,
		Name:          p.Name,
		PriceCents:    p.PriceCents,
		DurationDays:  p.DurationDays,
		IncludedHours: p.IncludedHours,
		Active:        p.Active,
	}
}

// ListPlans returns the active subscription plans.
func (h *PublicHandler) ListPlans(c echo.Context) error {
	list, err := h.Plans.ListPlans(c.Request().Context(), true)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]planResp, 0, len(list))
	for i := range list {
		out = append(out, toPlanResp(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-reservation/internal/booking"
	"github.com/iliyamo/coworking-reservation/internal/model"
	"github.com/iliyamo/coworking-reservation/internal/repository"
)

// ReservationHandler serves the member booking surface.  All mutating
// paths go through the booking engine; the repository is used for plain
// listings only.
type ReservationHandler struct {
	Booking      *booking.Service
	Reservations *repository.ReservationRepo
}

func NewReservationHandler(b *booking.Service, r *repository.ReservationRepo) *ReservationHandler {
	return &ReservationHandler{Booking: b, Reservations: r}
}

type createReservationReq struct {
	ResourceID       uint64    `json:"resource_id"`
	StartsAt         time.Time `json:"starts_at"`
	EndsAt           time.Time `json:"ends_at"`
	ParticipantCount uint32    `json:"participant_count"`
	PromoCode        string    `json:"promo_code"`
}

type reservationResp struct {
	ID               uint64    `json:"id"`
	ResourceID       uint64    `json:"resource_id"`
	UserID           uint64    `json:"user_id"`
	StartsAt         time.Time `json:"starts_at"`
	EndsAt           time.Time `json:"ends_at"`
	ParticipantCount uint32    `json:"participant_count"`
	Status           string    `json:"status"`
	BasePriceCents   int64     `json:"base_price_cents"`
	FinalPriceCents  int64     `json:"final_price_cents"`
	PromoCode        string    `json:"promo_code,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func toReservationResp(r *model.Reservation) reservationResp {
	resp := reservationResp{
		ID:               r.ID,
		ResourceID:       r.ResourceID,
		UserID:           r.UserID,
		StartsAt:         r.StartsAt,
		EndsAt:           r.EndsAt,
		ParticipantCount: r.ParticipantCount,
		Status:           r.Status,
		BasePriceCents:   r.BasePriceCents,
		FinalPriceCents:  r.FinalPriceCents,
		CreatedAt:        r.CreatedAt,
	}
	if r.PromoCode != nil {
		resp.PromoCode = *r.PromoCode
	}
	return resp
}

// Create books a resource for the authenticated member.  The
// reservation comes back pending with a projected price.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	r, err := h.Booking.Create(c.Request().Context(), booking.CreateRequest{
		ResourceID:       req.ResourceID,
		UserID:           uid,
		StartsAt:         req.StartsAt,
		EndsAt:           req.EndsAt,
		ParticipantCount: req.ParticipantCount,
		PromoCode:        req.PromoCode,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toReservationResp(r))
}

// ListMine returns the member's reservations with wall-clock derived
// statuses.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	uid, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Reservations.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	now := time.Now().UTC()
	out := make([]reservationResp, 0, len(list))
	for i := range list {
		list[i].Status = list[i].EffectiveStatus(now)
		out = append(out, toReservationResp(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one reservation.  Members see only their own; admins see
// everything.
func (h *ReservationHandler) Get(c echo.Context) error {
	uid, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	r, err := h.Booking.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if r.UserID != uid && c.Get("role") != "ADMIN" {
		// Hide other members' reservations entirely.
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(http.StatusOK, toReservationResp(r))
}

// Cancel cancels the member's own pending or confirmed reservation.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	uid, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	r, err := h.Booking.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if r.UserID != uid {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	cancelled, err := h.Booking.Cancel(c.Request().Context(), id, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(cancelled))
}

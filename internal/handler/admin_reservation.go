package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

// ConfirmReservation finalizes a pending reservation: discounts are
// applied, the promo use is consumed and the payment is recorded.
func (h *AdminHandler) ConfirmReservation(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	r, err := h.Booking.Confirm(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(r))
}

// CancelReservation cancels any member's pending or confirmed
// reservation, refunding a confirmed one.
func (h *AdminHandler) CancelReservation(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, _ := authedUserID(c)
	r, err := h.Booking.Cancel(c.Request().Context(), id, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(r))
}

// ListReservations returns all reservations, optionally filtered by
// resource via ?resource_id=N, with wall-clock derived statuses.
func (h *AdminHandler) ListReservations(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		list []model.Reservation
		err  error
	)
	if raw := c.QueryParam("resource_id"); raw != "" {
		var resourceID uint64
		if resourceID, err = parseUint(raw); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid resource_id"})
		}
		list, err = h.Reservations.ListByResource(ctx, resourceID)
	} else {
		list, err = h.Reservations.ListAll(ctx)
	}
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

// ListTransactions returns the full revenue ledger, newest first.
func (h *AdminHandler) ListTransactions(c echo.Context) error {
	list, err := h.Transactions.ListAll(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]transactionResp, 0, len(list))
	for _, t := range list {
		out = append(out, transactionResp{
			ID:            t.ID,
			Reference:     t.Reference,
			AmountCents:   t.AmountCents,
			Type:          t.Type,
			Status:        t.Status,
			ReservationID: t.ReservationID,
			EnrollmentID:  t.EnrollmentID,
			CreatedAt:     t.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

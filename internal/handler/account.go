package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-reservation/internal/model"
	"github.com/iliyamo/coworking-reservation/internal/repository"
)

// AccountHandler serves the member's own ledger: referral credits,
// transactions and subscription enrollment.
type AccountHandler struct {
	Credits       *repository.CreditRepo
	Transactions  *repository.TransactionRepo
	Subscriptions *repository.SubscriptionRepo
}

func NewAccountHandler(cr *repository.CreditRepo, tr *repository.TransactionRepo, sub *repository.SubscriptionRepo) *AccountHandler {
	return &AccountHandler{Credits: cr, Transactions: tr, Subscriptions: sub}
}

type creditResp struct {
	ID             uint64    `json:"id"`
	ReferredUserID uint64    `json:"referred_user_id"`
	AmountCents    int64     `json:"amount_cents"`
	RemainingCents int64     `json:"remaining_cents"`
	CreatedAt      time.Time `json:"created_at"`
}

type transactionResp struct {
	ID            uint64    `json:"id"`
	Reference     string    `json:"reference"`
	AmountCents   int64     `json:"amount_cents"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	ReservationID *uint64   `json:"reservation_id,omitempty"`
	EnrollmentID  *uint64   `json:"enrollment_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type enrollmentResp struct {
	ID             uint64    `json:"id"`
	PlanID         uint64    `json:"plan_id"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	RemainingHours uint32    `json:"remaining_hours"`
}

func toEnrollmentResp(e *model.SubscriptionEnrollment) enrollmentResp {
	return enrollmentResp{
		ID:             e.ID,
		PlanID:         e.PlanID,
		StartsAt:       e.StartsAt,
		EndsAt:         e.EndsAt,
		RemainingHours: e.RemainingHours,
	}
}

// ListCredits returns the member's referral credits including consumed
// ones, oldest first.
func (h *AccountHandler) ListCredits(c echo.Context) error {
	uid, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Credits.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]creditResp, 0, len(list))
	for _, cr := range list {
		out = append(out, creditResp{
			ID:             cr.ID,
			ReferredUserID: cr.ReferredUserID,
			AmountCents:    cr.AmountCents,
			RemainingCents: cr.RemainingCents,
			CreatedAt:      cr.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ListTransactions returns the member's ledger entries, newest first.
func (h *AccountHandler) ListTransactions(c echo.Context) error {
	uid, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Transactions.ListByUser(c.Request().Context(), uid)
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

type enrollReq struct {
	PlanID uint64 `json:"plan_id"`
}

// Enroll subscribes the member to a plan, records the payment and
// returns the enrollment with its hour budget.
func (h *AccountHandler) Enroll(c echo.Context) error {
	uid, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req enrollReq
	if err := c.Bind(&req); err != nil || req.PlanID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plan_id required"})
	}
	ctx := c.Request().Context()
	plan, err := h.Subscriptions.GetPlan(ctx, req.PlanID)
	if err != nil {
		return respondError(c, err)
	}
	if !plan.Active {
		return c.JSON(http.StatusConflict, echo.Map{"error": "plan is not accepting enrollments"})
	}
	enr, err := h.Subscriptions.Enroll(ctx, uid, plan, time.Now().UTC())
	if err != nil {
		return respondError(c, err)
	}
	enrID := enr.ID
	if err := h.Transactions.Create(ctx, &model.Transaction{
		Reference:    uuid.NewString(),
		UserID:       uid,
		AmountCents:  plan.PriceCents,
		Type:         model.TransactionPayment,
		Status:       model.TransactionCompleted,
		EnrollmentID: &enrID,
	}); err != nil {
		c.Logger().Errorf("record enrollment payment failed: %v", err)
	}
	return c.JSON(http.StatusCreated, toEnrollmentResp(enr))
}

// ActiveEnrollment returns the member's current enrollment, if any.
func (h *AccountHandler) ActiveEnrollment(c echo.Context) error {
	uid, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	enr, err := h.Subscriptions.ActiveEnrollment(c.Request().Context(), uid, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active enrollment"})
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toEnrollmentResp(enr))
}

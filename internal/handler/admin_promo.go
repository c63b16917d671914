package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

type promoReq struct {
	Code                string    `json:"code"`
	DiscountType        string    `json:"discount_type"`
	DiscountValue       int64     `json:"discount_value"`
	ValidFrom           time.Time `json:"valid_from"`
	ValidUntil          time.Time `json:"valid_until"`
	MinOrderAmountCents int64     `json:"min_order_amount_cents"`
	MaxUses             uint32    `json:"max_uses"`
	ApplicableTo        string    `json:"applicable_to"`
}

type promoResp struct {
	ID                  uint64    `json:"id"`
	Code                string    `json:"code"`
	DiscountType        string    `json:"discount_type"`
	DiscountValue       int64     `json:"discount_value"`
	ValidFrom           time.Time `json:"valid_from"`
	ValidUntil          time.Time `json:"valid_until"`
	MinOrderAmountCents int64     `json:"min_order_amount_cents"`
	MaxUses             uint32    `json:"max_uses"`
	UsesSoFar           uint32    `json:"uses_so_far"`
	ApplicableTo        string    `json:"applicable_to"`
}

func toPromoResp(p *model.PromoCode) promoResp {
	return promoResp{
		ID:                  p.ID,
		Code:                p.Code,
		DiscountType:        p.DiscountType,
		DiscountValue:       p.DiscountValue,
		ValidFrom:           p.ValidFrom,
		ValidUntil:          p.ValidUntil,
		MinOrderAmountCents: p.MinOrderAmountCents,
		MaxUses:             p.MaxUses,
		UsesSoFar:           p.UsesSoFar,
		ApplicableTo:        p.ApplicableTo,
	}
}

// CreatePromo registers a promo code.  Duplicate codes are rejected
// with 409.
func (h *AdminHandler) CreatePromo(c echo.Context) error {
	var req promoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}
	switch req.DiscountType {
	case model.DiscountPercentage:
		if req.DiscountValue < 1 || req.DiscountValue > 100 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "percentage must be 1-100"})
		}
	case model.DiscountFixed:
		if req.DiscountValue < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "fixed discount must be positive"})
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "discount_type must be percentage or fixed"})
	}
	if !req.ValidFrom.Before(req.ValidUntil) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid_from must precede valid_until"})
	}
	if req.MaxUses == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_uses must be at least 1"})
	}
	switch req.ApplicableTo {
	case "":
		req.ApplicableTo = model.PromoScopeAll
	case model.PromoScopeAll, model.PromoScopeReservation, model.PromoScopeSubscription:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "applicable_to must be all, reservation or subscription"})
	}

	p := &model.PromoCode{
		Code:                req.Code,
		DiscountType:        req.DiscountType,
		DiscountValue:       req.DiscountValue,
		ValidFrom:           req.ValidFrom.UTC(),
		ValidUntil:          req.ValidUntil.UTC(),
		MinOrderAmountCents: req.MinOrderAmountCents,
		MaxUses:             req.MaxUses,
		ApplicableTo:        req.ApplicableTo,
	}
	if err := h.Promos.Create(c.Request().Context(), p); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toPromoResp(p))
}

// ListPromos returns all promo codes with their usage counters.
func (h *AdminHandler) ListPromos(c echo.Context) error {
	list, err := h.Promos.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]promoResp, 0, len(list))
	for i := range list {
		out = append(out, toPromoResp(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

package booking

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/coworking-reservation/internal/model"
	"github.com/iliyamo/coworking-reservation/internal/pricing"
)

// CreditUse records how much of one referral credit a discount plan
// intends to consume.
type CreditUse struct {
	CreditID    uint64
	AmountCents int64
}

// Breakdown describes how a base price becomes a final price.  The
// three discount sources stack in a fixed order: subscription hours
// first (they reduce billable time before money is discussed), then at
// most one promo code on the remaining amount, then referral credit on
// whatever is left.  The running amount is floored at zero after every
// step, so FinalPriceCents is never negative.
type Breakdown struct {
	BasePriceCents    int64
	EnrollmentID      uint64 // 0 when no subscription applied
	SubscriptionHours uint32
	SubscriptionCents int64
	PromoCode         string // empty when no promo applied
	PromoCents        int64
	CreditUses        []CreditUse
	CreditCents       int64
	FinalPriceCents   int64
}

// ValidatePromoCode checks a promo code against an order without
// consuming a use.  It returns the discount in cents on success and a
// PromoInvalidError naming the reason otherwise.
func ValidatePromoCode(p *model.PromoCode, orderAmountCents int64, applicableType string, now time.Time) (int64, error) {
	if now.Before(p.ValidFrom) {
		return 0, &PromoInvalidError{Code: p.Code, Reason: PromoReasonNotStarted}
	}
	if now.After(p.ValidUntil) {
		return 0, &PromoInvalidError{Code: p.Code, Reason: PromoReasonExpired}
	}
	if p.UsesSoFar >= p.MaxUses {
		return 0, &PromoInvalidError{Code: p.Code, Reason: PromoReasonExhausted}
	}
	if orderAmountCents < p.MinOrderAmountCents {
		return 0, &PromoInvalidError{Code: p.Code, Reason: PromoReasonBelowMinimum}
	}
	if p.ApplicableTo != model.PromoScopeAll && p.ApplicableTo != applicableType {
		return 0, &PromoInvalidError{Code: p.Code, Reason: PromoReasonWrongType}
	}
	var discount int64
	switch p.DiscountType {
	case model.DiscountPercentage:
		// Half-up rounding, consistent with pricing proration.
		discount = (orderAmountCents*p.DiscountValue + 50) / 100
	case model.DiscountFixed:
		discount = p.DiscountValue
	default:
		return 0, &PromoInvalidError{Code: p.Code, Reason: PromoReasonWrongType}
	}
	if discount > orderAmountCents {
		discount = orderAmountCents
	}
	return discount, nil
}

// planDiscounts computes a Breakdown from current store state without
// writing anything.  Create uses it to record a projected final price
// on the pending row; Confirm re-runs it inside the commit transaction
// and then applies it.  A missing promo code surfaces as
// PromoInvalidError(unknown).
func planDiscounts(ctx context.Context, s Store, res *model.Resource, userID uint64, start, end time.Time, promoCode string, baseCents int64, now time.Time) (*Breakdown, error) {
	b := &Breakdown{BasePriceCents: baseCents}
	remaining := baseCents

	// 1. Subscription hours reduce billable time at the hourly rate.
	if res.HourlyRateCents > 0 {
		enr, err := s.ActiveEnrollment(ctx, userID, start)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if enr != nil {
			hours := pricing.CeilHours(end.Sub(start))
			use := uint32(hours)
			if enr.RemainingHours < use {
				use = enr.RemainingHours
			}
			cents := int64(use) * res.HourlyRateCents
			if cents > remaining {
				cents = remaining
			}
			if use > 0 && cents > 0 {
				b.EnrollmentID = enr.ID
				b.SubscriptionHours = use
				b.SubscriptionCents = cents
				remaining -= cents
			}
		}
	}

	// 2. At most one promo code on the remaining amount.
	if promoCode != "" {
		p, err := s.GetPromoCode(ctx, promoCode)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, &PromoInvalidError{Code: promoCode, Reason: PromoReasonUnknown}
			}
			return nil, err
		}
		discount, err := ValidatePromoCode(p, remaining, model.PromoScopeReservation, now)
		if err != nil {
			return nil, err
		}
		b.PromoCode = p.Code
		b.PromoCents = discount
		remaining -= discount
	}

	// 3. Referral credits, oldest first, never past zero.
	if remaining > 0 {
		credits, err := s.AvailableCredits(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, c := range credits {
			if remaining == 0 {
				break
			}
			take := c.RemainingCents
			if take > remaining {
				take = remaining
			}
			if take <= 0 {
				continue
			}
			b.CreditUses = append(b.CreditUses, CreditUse{CreditID: c.ID, AmountCents: take})
			b.CreditCents += take
			remaining -= take
		}
	}

	b.FinalPriceCents = remaining
	return b, nil
}

package model

import "time"

// Promo discount types.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Promo applicability scopes.  "all" matches any order type.
const (
	PromoScopeAll          = "all"
	PromoScopeReservation  = "reservation"
	PromoScopeSubscription = "subscription"
)

// PromoCode is a redeemable discount token with usage and validity
// limits.  The invariant uses_so_far <= max_uses is enforced by an
// atomic conditional increment in the repository; no read-modify-write
// path exists.
//
// Fields:
//  ID                  – primary key identifier.
//  Code                – unique code string, stored upper-case.
//  DiscountType        – percentage or fixed.
//  DiscountValue       – percent (0–100) or cents depending on type.
//  ValidFrom           – start of the validity window (UTC).
//  ValidUntil          – end of the validity window (UTC).
//  MinOrderAmountCents – minimum base price required to apply.
//  MaxUses             – total number of redemptions allowed.
//  UsesSoFar           – redemptions consumed so far.
//  ApplicableTo        – scope the code may be applied to.
//  CreatedAt           – creation timestamp.
type PromoCode struct {
	ID                  uint64    // promo_codes.id
	Code                string    // promo_codes.code
	DiscountType        string    // promo_codes.discount_type
	DiscountValue       int64     // promo_codes.discount_value
	ValidFrom           time.Time // promo_codes.valid_from
	ValidUntil          time.Time // promo_codes.valid_until
	MinOrderAmountCents int64     // promo_codes.min_order_amount_cents
	MaxUses             uint32    // promo_codes.max_uses
	UsesSoFar           uint32    // promo_codes.uses_so_far
	ApplicableTo        string    // promo_codes.applicable_to
	CreatedAt           time.Time // promo_codes.created_at
}

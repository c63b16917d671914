package model

import "time"

// ReferralCredit is a cash-equivalent credit granted to a user for a
// successful referral.  Credits are consumed oldest-first when applied
// to a reservation; a partially used credit keeps its remainder for
// future use and never goes negative.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – user the credit belongs to (the referrer).
//  ReferredUserID – user whose signup earned the credit.
//  AmountCents    – original credit amount.
//  RemainingCents – unconsumed portion of the credit.
//  CreatedAt      – creation timestamp.
type ReferralCredit struct {
	ID             uint64    // referral_credits.id
	UserID         uint64    // referral_credits.user_id
	ReferredUserID uint64    // referral_credits.referred_user_id
	AmountCents    int64     // referral_credits.amount_cents
	RemainingCents int64     // referral_credits.remaining_cents
	CreatedAt      time.Time // referral_credits.created_at
}

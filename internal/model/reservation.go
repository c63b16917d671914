package model

import "time"

// Reservation statuses.  A reservation starts out pending, is confirmed
// by an admin (or an auto-confirm path), becomes in_progress once the
// wall clock crosses its start and completed once it crosses its end.
// Cancellation is reachable from pending and confirmed only.  Terminal
// rows (completed, cancelled) are immutable and never deleted.
const (
	ReservationPending    = "pending"
	ReservationConfirmed  = "confirmed"
	ReservationInProgress = "in_progress"
	ReservationCompleted  = "completed"
	ReservationCancelled  = "cancelled"
)

// Reservation records a user's booking of a resource for a half-open
// time window [StartsAt, EndsAt).  Monetary amounts are in cents.
//
// Fields:
//  ID               – primary key identifier.
//  ResourceID       – resource being reserved.
//  UserID           – user who made the reservation.
//  StartsAt         – inclusive start of the window (UTC).
//  EndsAt           – exclusive end of the window (UTC).
//  ParticipantCount – number of people using the resource.
//  Status           – one of the status constants above.
//  BasePriceCents   – tier price before discounts.
//  FinalPriceCents  – payable amount after discounts, never negative.
//  PromoCode        – applied promo code, if any (nullable).
//  PromoRedeemed    – whether the promo usage counter was consumed.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Reservation struct {
	ID               uint64    // reservations.id
	ResourceID       uint64    // reservations.resource_id
	UserID           uint64    // reservations.user_id
	StartsAt         time.Time // reservations.starts_at
	EndsAt           time.Time // reservations.ends_at
	ParticipantCount uint32    // reservations.participant_count
	Status           string    // reservations.status
	BasePriceCents   int64     // reservations.base_price_cents
	FinalPriceCents  int64     // reservations.final_price_cents
	PromoCode        *string   // reservations.promo_code (nullable)
	PromoRedeemed    bool      // reservations.promo_redeemed
	CreatedAt        time.Time // reservations.created_at
	UpdatedAt        time.Time // reservations.updated_at
}

// EffectiveStatus derives the externally visible status at the given
// instant.  Confirmed reservations roll into in_progress and completed
// purely from the wall clock; the background sweeper persists these
// transitions later, so reads must not depend on it having run.
func (r *Reservation) EffectiveStatus(now time.Time) string {
	switch r.Status {
	case ReservationConfirmed, ReservationInProgress:
		if !now.Before(r.EndsAt) {
			return ReservationCompleted
		}
		if !now.Before(r.StartsAt) {
			return ReservationInProgress
		}
		return ReservationConfirmed
	default:
		return r.Status
	}
}

// Overlaps reports whether the reservation's half-open window intersects
// [start, end).  Back-to-back windows sharing an endpoint do not overlap.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartsAt.Before(end) && start.Before(r.EndsAt)
}

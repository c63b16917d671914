// Package booking implements the reservation scheduling and pricing
// engine: availability gating, the reservation lifecycle and the
// discount ledger.  It owns the core invariants (no two confirmed
// reservations overlap on a resource, prices never go negative, promo
// codes are never over-redeemed) and talks to persistence only through
// the Store contract defined in store.go.
package booking

import "fmt"

// Promo rejection reasons carried by PromoInvalidError so the UI can
// explain why a code was refused.
const (
	PromoReasonUnknown      = "unknown"
	PromoReasonNotStarted   = "not_started"
	PromoReasonExpired      = "expired"
	PromoReasonExhausted    = "exhausted"
	PromoReasonBelowMinimum = "below_minimum"
	PromoReasonWrongType    = "wrong_type"
)

// ValidationError reports malformed input: a bad interval, a zero or
// excessive participant count.  The caller can fix the request and
// retry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports that the requested interval is not bookable:
// either the resource is disabled or another reservation holds an
// overlapping window.  ConflictingID is zero when the resource itself
// is unavailable.
type ConflictError struct {
	ResourceID    uint64
	ConflictingID uint64
	Reason        string
}

func (e *ConflictError) Error() string {
	if e.ConflictingID != 0 {
		return fmt.Sprintf("resource %d: %s (conflicts with reservation %d)", e.ResourceID, e.Reason, e.ConflictingID)
	}
	return fmt.Sprintf("resource %d: %s", e.ResourceID, e.Reason)
}

// PromoInvalidError reports why a promo code cannot be applied.  The
// Reason field holds one of the PromoReason constants.
type PromoInvalidError struct {
	Code   string
	Reason string
}

func (e *PromoInvalidError) Error() string {
	return fmt.Sprintf("promo code %q: %s", e.Code, e.Reason)
}

// InvalidStateError reports a lifecycle transition attempted from a
// terminal or incompatible state.  It signals a programming or race
// error upstream; callers log it rather than retry.
type InvalidStateError struct {
	ReservationID uint64
	From          string
	To            string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("reservation %d: cannot transition %s -> %s", e.ReservationID, e.From, e.To)
}

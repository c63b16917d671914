package booking

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

// ErrNotFound is returned by Store implementations when a requested
// record does not exist.
var ErrNotFound = errors.New("not found")

// ErrPromoExhausted is returned by RedeemPromoCode when the conditional
// increment found no remaining use.
var ErrPromoExhausted = errors.New("promo code exhausted")

// Store is the persistence contract of the booking engine.  Mutating
// methods carry compare-and-set semantics: they report whether the
// guarded write happened instead of reading state first, so no
// read-modify-write window exists anywhere in the engine.
//
// The SQL implementation lives in internal/repository; tests use an
// in-memory fake.
type Store interface {
	GetResource(ctx context.Context, id uint64) (*model.Resource, error)

	GetReservation(ctx context.Context, id uint64) (*model.Reservation, error)
	// InsertReservation persists a new reservation and assigns its ID.
	InsertReservation(ctx context.Context, r *model.Reservation) error
	// OverlappingReservation returns the id of one reservation on the
	// resource whose half-open window intersects [start, end) and whose
	// status is pending, confirmed or in_progress.  excludeID skips the
	// caller's own row.
	OverlappingReservation(ctx context.Context, resourceID uint64, start, end time.Time, excludeID uint64) (uint64, bool, error)
	// ConfirmReservation transitions pending -> confirmed and records
	// the final price, reporting whether the row was still pending.
	ConfirmReservation(ctx context.Context, id uint64, finalPriceCents int64) (bool, error)
	// UpdateReservationStatus performs a guarded status transition.
	UpdateReservationStatus(ctx context.Context, id uint64, from []string, to string) (bool, error)
	MarkPromoRedeemed(ctx context.Context, id uint64) error

	GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error)
	// RedeemPromoCode consumes one use via an atomic conditional
	// increment; ErrPromoExhausted when none remain.
	RedeemPromoCode(ctx context.Context, code string) error

	ActiveEnrollment(ctx context.Context, userID uint64, at time.Time) (*model.SubscriptionEnrollment, error)
	ConsumeEnrollmentHours(ctx context.Context, enrollmentID uint64, hours uint32) (bool, error)

	// AvailableCredits returns the user's unconsumed referral credits,
	// oldest first.
	AvailableCredits(ctx context.Context, userID uint64) ([]model.ReferralCredit, error)
	ConsumeCredit(ctx context.Context, creditID uint64, amountCents int64) (bool, error)

	AppendTransaction(ctx context.Context, t *model.Transaction) error

	// Atomically runs fn with all-or-nothing semantics.  When
	// resourceID is non-zero the implementation holds a lock that
	// serializes every check-then-write sequence on that resource for
	// the duration of fn; this is what guarantees at most one confirmed
	// reservation per overlapping interval.  The Store passed to fn
	// must be used for every access inside the critical section.
	Atomically(ctx context.Context, resourceID uint64, fn func(s Store) error) error

	// PromoteReservationStatuses persists wall-clock derived
	// transitions (confirmed -> in_progress -> completed).
	PromoteReservationStatuses(ctx context.Context, now time.Time) (int64, error)
	// CancelStalePending cancels pending reservations created before
	// the cutoff so abandoned checkouts free the calendar.
	CancelStalePending(ctx context.Context, before time.Time) (int64, error)
}

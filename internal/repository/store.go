package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/coworking-reservation/internal/booking"
	"github.com/iliyamo/coworking-reservation/internal/model"
)

// Store implements booking.Store on MySQL by composing the per-table
// repositories.  Outside Atomically every method runs on the pooled
// connection; inside, the same methods run on the enclosing
// transaction, so a critical section commits or rolls back as a whole.
type Store struct {
	db *sql.DB
	tx *sql.Tx // non-nil for the Store handed to an Atomically callback

	resources     *ResourceRepo
	reservations  *ReservationRepo
	promos        *PromoRepo
	subscriptions *SubscriptionRepo
	credits       *CreditRepo
	transactions  *TransactionRepo
}

// NewStore builds a Store over the given database handle and
// repositories.  All dependencies must be non-nil.
func NewStore(db *sql.DB, resources *ResourceRepo, reservations *ReservationRepo, promos *PromoRepo, subscriptions *SubscriptionRepo, credits *CreditRepo, transactions *TransactionRepo) *Store {
	if db == nil || resources == nil || reservations == nil || promos == nil || subscriptions == nil || credits == nil || transactions == nil {
		panic("nil dependency passed to NewStore")
	}
	return &Store{
		db:            db,
		resources:     resources,
		reservations:  reservations,
		promos:        promos,
		subscriptions: subscriptions,
		credits:       credits,
		transactions:  transactions,
	}
}

// mapErr translates repository sentinels into the booking package's
// store contract errors.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return booking.ErrNotFound
	case errors.Is(err, ErrPromoExhausted):
		return booking.ErrPromoExhausted
	default:
		return err
	}
}

// Atomically opens a transaction, takes a row lock on the resource when
// resourceID is non-zero, and runs fn against a transaction-bound copy
// of the store.  This per-resource lock held across the check-then-write
// sequence is the serialization mechanism that enforces at most one
// confirmed reservation per overlapping interval.
func (s *Store) Atomically(ctx context.Context, resourceID uint64, fn func(st booking.Store) error) error {
	if s.tx != nil {
		// Already inside a critical section; nesting reuses it.
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if resourceID != 0 {
		if err := s.resources.LockTx(ctx, tx, resourceID); err != nil {
			return mapErr(err)
		}
	}
	inner := *s
	inner.tx = tx
	if err := fn(&inner); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) GetResource(ctx context.Context, id uint64) (*model.Resource, error) {
	var (
		res *model.Resource
		err error
	)
	if s.tx != nil {
		res, err = s.resources.GetByIDTx(ctx, s.tx, id)
	} else {
		res, err = s.resources.GetByID(ctx, id)
	}
	return res, mapErr(err)
}

func (s *Store) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	var (
		r   *model.Reservation
		err error
	)
	if s.tx != nil {
		r, err = s.reservations.GetByIDTx(ctx, s.tx, id)
	} else {
		r, err = s.reservations.GetByID(ctx, id)
	}
	return r, mapErr(err)
}

func (s *Store) InsertReservation(ctx context.Context, r *model.Reservation) error {
	if s.tx == nil {
		return errors.New("reservation insert outside critical section")
	}
	return s.reservations.CreateTx(ctx, s.tx, r)
}

func (s *Store) OverlappingReservation(ctx context.Context, resourceID uint64, start, end time.Time, excludeID uint64) (uint64, bool, error) {
	if s.tx != nil {
		return s.reservations.OverlappingTx(ctx, s.tx, resourceID, start, end, excludeID)
	}
	return s.reservations.Overlapping(ctx, resourceID, start, end, excludeID)
}

func (s *Store) ConfirmReservation(ctx context.Context, id uint64, finalPriceCents int64) (bool, error) {
	if s.tx == nil {
		return false, errors.New("reservation confirm outside critical section")
	}
	return s.reservations.ConfirmTx(ctx, s.tx, id, finalPriceCents)
}

func (s *Store) UpdateReservationStatus(ctx context.Context, id uint64, from []string, to string) (bool, error) {
	if s.tx != nil {
		return s.reservations.UpdateStatusTx(ctx, s.tx, id, from, to)
	}
	return s.reservations.UpdateStatus(ctx, id, from, to)
}

func (s *Store) MarkPromoRedeemed(ctx context.Context, id uint64) error {
	if s.tx == nil {
		return errors.New("promo redemption outside critical section")
	}
	return s.reservations.MarkPromoRedeemedTx(ctx, s.tx, id)
}

func (s *Store) GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error) {
	var (
		p   *model.PromoCode
		err error
	)
	if s.tx != nil {
		p, err = s.promos.GetByCodeTx(ctx, s.tx, code)
	} else {
		p, err = s.promos.GetByCode(ctx, code)
	}
	return p, mapErr(err)
}

func (s *Store) RedeemPromoCode(ctx context.Context, code string) error {
	if s.tx == nil {
		return errors.New("promo redemption outside critical section")
	}
	return mapErr(s.promos.RedeemTx(ctx, s.tx, code))
}

func (s *Store) ActiveEnrollment(ctx context.Context, userID uint64, at time.Time) (*model.SubscriptionEnrollment, error) {
	var (
		e   *model.SubscriptionEnrollment
		err error
	)
	if s.tx != nil {
		e, err = s.subscriptions.ActiveEnrollmentTx(ctx, s.tx, userID, at)
	} else {
		e, err = s.subscriptions.ActiveEnrollment(ctx, userID, at)
	}
	return e, mapErr(err)
}

func (s *Store) ConsumeEnrollmentHours(ctx context.Context, enrollmentID uint64, hours uint32) (bool, error) {
	if s.tx == nil {
		return false, errors.New("enrollment consumption outside critical section")
	}
	return s.subscriptions.ConsumeHoursTx(ctx, s.tx, enrollmentID, hours)
}

func (s *Store) AvailableCredits(ctx context.Context, userID uint64) ([]model.ReferralCredit, error) {
	if s.tx != nil {
		return s.credits.AvailableByUserTx(ctx, s.tx, userID)
	}
	return s.credits.AvailableByUser(ctx, userID)
}

func (s *Store) ConsumeCredit(ctx context.Context, creditID uint64, amountCents int64) (bool, error) {
	if s.tx == nil {
		return false, errors.New("credit consumption outside critical section")
	}
	return s.credits.ConsumeTx(ctx, s.tx, creditID, amountCents)
}

func (s *Store) AppendTransaction(ctx context.Context, t *model.Transaction) error {
	if s.tx != nil {
		return s.transactions.CreateTx(ctx, s.tx, t)
	}
	return s.transactions.Create(ctx, t)
}

func (s *Store) PromoteReservationStatuses(ctx context.Context, now time.Time) (int64, error) {
	return s.reservations.PromoteStatuses(ctx, now)
}

func (s *Store) CancelStalePending(ctx context.Context, before time.Time) (int64, error) {
	return s.reservations.CancelStalePending(ctx, before)
}

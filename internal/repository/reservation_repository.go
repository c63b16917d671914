package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations.  Rows are
// never physically deleted: cancellation is a status change, which
// keeps the audit history intact.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// obstacleStatuses are the reservation statuses that block the calendar
// for availability purposes.
var obstacleStatuses = []string{
	model.ReservationPending,
	model.ReservationConfirmed,
	model.ReservationInProgress,
}

const reservationCols = `id, resource_id, user_id, starts_at, ends_at, participant_count, status, base_price_cents, final_price_cents, promo_code, promo_redeemed, created_at, updated_at`

func scanReservation(scan func(dest ...interface{}) error) (*model.Reservation, error) {
	var r model.Reservation
	var promo sql.NullString
	err := scan(&r.ID, &r.ResourceID, &r.UserID, &r.StartsAt, &r.EndsAt,
		&r.ParticipantCount, &r.Status, &r.BasePriceCents, &r.FinalPriceCents,
		&promo, &r.PromoRedeemed, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if promo.Valid {
		p := promo.String
		r.PromoCode = &p
	}
	return &r, nil
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// provided record.  The caller must commit or rollback.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (resource_id, user_id, starts_at, ends_at, participant_count, status, base_price_cents, final_price_cents, promo_code) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var promo interface{}
	if res.PromoCode != nil {
		promo = *res.PromoCode
	}
	result, err := tx.ExecContext(ctx, q, res.ResourceID, res.UserID,
		res.StartsAt.UTC(), res.EndsAt.UTC(), res.ParticipantCount, res.Status,
		res.BasePriceCents, res.FinalPriceCents, promo)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	got, err := r.getByID(ctx, tx, res.ID)
	if err != nil {
		return err
	}
	*res = *got
	return nil
}

// GetByID fetches a reservation by id.  ErrNotFound when no row exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return r.getByID(ctx, r.db, id)
}

// GetByIDTx is GetByID executed on an existing transaction.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	return r.getByID(ctx, tx, id)
}

func (r *ReservationRepo) getByID(ctx context.Context, q dbtx, id uint64) (*model.Reservation, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE id = ?`, id)
	return scanReservation(row.Scan)
}

// Overlapping returns the id of one reservation on the resource whose
// half-open window intersects [start, end) and whose status blocks the
// calendar.  The second return value is false when the interval is
// free.  Back-to-back windows do not intersect.
func (r *ReservationRepo) Overlapping(ctx context.Context, resourceID uint64, start, end time.Time, excludeID uint64) (uint64, bool, error) {
	return r.overlapping(ctx, r.db, resourceID, start, end, excludeID)
}

// OverlappingTx is Overlapping executed on an existing transaction.
// Run it after ResourceRepo.LockTx so the answer stays true until
// commit.
func (r *ReservationRepo) OverlappingTx(ctx context.Context, tx *sql.Tx, resourceID uint64, start, end time.Time, excludeID uint64) (uint64, bool, error) {
	return r.overlapping(ctx, tx, resourceID, start, end, excludeID)
}

func (r *ReservationRepo) overlapping(ctx context.Context, q dbtx, resourceID uint64, start, end time.Time, excludeID uint64) (uint64, bool, error) {
	// Half-open overlap test: existing.start < end AND start < existing.end.
	query := `SELECT id FROM reservations
	          WHERE resource_id = ?
	            AND id <> ?
	            AND status IN ('` + strings.Join(obstacleStatuses, `','`) + `')
	            AND starts_at < ? AND ? < ends_at
	          ORDER BY id LIMIT 1`
	var id uint64
	err := q.QueryRowContext(ctx, query, resourceID, excludeID, end.UTC(), start.UTC()).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// UpdateStatusTx performs a compare-and-set status transition inside a
// transaction.  It reports whether a row was updated; false means the
// reservation was not in any of the from statuses, i.e. the transition
// lost a race or was invalid.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from []string, to string) (bool, error) {
	return r.updateStatus(ctx, tx, id, from, to)
}

// UpdateStatus is UpdateStatusTx without an enclosing transaction; the
// single UPDATE is atomic on its own.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, from []string, to string) (bool, error) {
	return r.updateStatus(ctx, r.db, id, from, to)
}

func (r *ReservationRepo) updateStatus(ctx context.Context, q dbtx, id uint64, from []string, to string) (bool, error) {
	query := `UPDATE reservations SET status = ? WHERE id = ? AND status IN ('` +
		strings.Join(from, `','`) + `')`
	result, err := q.ExecContext(ctx, query, to, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ConfirmTx transitions a pending reservation to confirmed and records
// the final price in the same statement, so a lost race can never leave
// a confirmed row with a stale price.
func (r *ReservationRepo) ConfirmTx(ctx context.Context, tx *sql.Tx, id uint64, finalPriceCents int64) (bool, error) {
	result, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ?, final_price_cents = ? WHERE id = ? AND status = ?`,
		model.ReservationConfirmed, finalPriceCents, id, model.ReservationPending)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkPromoRedeemedTx flags the reservation's promo code as consumed.
// Together with the conditional increment in PromoRepo.RedeemTx this
// makes redemption happen exactly once per reservation.
func (r *ReservationRepo) MarkPromoRedeemedTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE reservations SET promo_redeemed = 1 WHERE id = ?`, id)
	return err
}

// ListByUser returns all reservations for the given user, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return r.list(ctx, `WHERE user_id = ?`, userID)
}

// ListByResource returns all reservations on a resource, newest first.
func (r *ReservationRepo) ListByResource(ctx context.Context, resourceID uint64) ([]model.Reservation, error) {
	return r.list(ctx, `WHERE resource_id = ?`, resourceID)
}

// ListAll returns every reservation, newest first.  Intended for the
// admin surface.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	return r.list(ctx, ``)
}

func (r *ReservationRepo) list(ctx context.Context, where string, args ...interface{}) ([]model.Reservation, error) {
	query := `SELECT ` + reservationCols + ` FROM reservations ` + where + ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// PromoteStatuses persists the wall-clock derived transitions: confirmed
// rows whose start has passed become in_progress, and confirmed or
// in_progress rows whose end has passed become completed.  It returns
// the number of rows touched.  Reads do not depend on this having run;
// model.Reservation.EffectiveStatus derives the same answer.
func (r *ReservationRepo) PromoteStatuses(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE status IN (?, ?) AND ends_at <= ?`,
		model.ReservationCompleted, model.ReservationConfirmed, model.ReservationInProgress, now.UTC())
	if err != nil {
		return 0, err
	}
	if n, err := result.RowsAffected(); err == nil {
		total += n
	}
	result, err = r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE status = ? AND starts_at <= ? AND ends_at > ?`,
		model.ReservationInProgress, model.ReservationConfirmed, now.UTC(), now.UTC())
	if err != nil {
		return total, err
	}
	if n, err := result.RowsAffected(); err == nil {
		total += n
	}
	return total, nil
}

// CancelStalePending cancels pending reservations created before the
// given cutoff.  Abandoned checkouts stop blocking the calendar without
// ever deleting rows.
func (r *ReservationRepo) CancelStalePending(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE status = ? AND created_at < ?`,
		model.ReservationCancelled, model.ReservationPending, before.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

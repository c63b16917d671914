package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

// CreditRepo provides persistence for referral credits.  Credits are
// consumed oldest-first through conditional decrements; a partially
// used credit keeps its remainder and a remainder can never go
// negative.
type CreditRepo struct {
	db *sql.DB
}

// NewCreditRepo returns a new CreditRepo bound to the given database.
func NewCreditRepo(db *sql.DB) *CreditRepo { return &CreditRepo{db: db} }

// Create grants a new credit and populates the generated ID.
// RemainingCents is seeded from AmountCents.
func (r *CreditRepo) Create(ctx context.Context, c *model.ReferralCredit) error {
	const q = `INSERT INTO referral_credits (user_id, referred_user_id, amount_cents, remaining_cents) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, c.UserID, c.ReferredUserID, c.AmountCents, c.AmountCents)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.RemainingCents = c.AmountCents
	return nil
}

// ListByUser returns all credits of a user, oldest first, including
// fully consumed ones for history.
func (r *CreditRepo) ListByUser(ctx context.Context, userID uint64) ([]model.ReferralCredit, error) {
	return r.listByUser(ctx, r.db, userID, false)
}

// AvailableByUserTx returns the user's credits that still have a
// remainder, oldest first, within an existing transaction.  The
// booking service walks this list when applying referral credit to a
// reservation.
func (r *CreditRepo) AvailableByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) ([]model.ReferralCredit, error) {
	return r.listByUser(ctx, tx, userID, true)
}

// AvailableByUser is AvailableByUserTx without an enclosing
// transaction, used for advisory discount previews.
func (r *CreditRepo) AvailableByUser(ctx context.Context, userID uint64) ([]model.ReferralCredit, error) {
	return r.listByUser(ctx, r.db, userID, true)
}

func (r *CreditRepo) listByUser(ctx context.Context, q dbtx, userID uint64, onlyAvailable bool) ([]model.ReferralCredit, error) {
	query := `SELECT id, user_id, referred_user_id, amount_cents, remaining_cents, created_at
	          FROM referral_credits WHERE user_id = ?`
	if onlyAvailable {
		query += ` AND remaining_cents > 0`
	}
	query += ` ORDER BY created_at, id`
	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ReferralCredit, 0)
	for rows.Next() {
		var c model.ReferralCredit
		if err := rows.Scan(&c.ID, &c.UserID, &c.ReferredUserID, &c.AmountCents, &c.RemainingCents, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ConsumeTx deducts amountCents from a credit's remainder only if the
// remainder covers it.  It reports whether the deduction happened;
// false means a concurrent consumer got there first.
func (r *CreditRepo) ConsumeTx(ctx context.Context, tx *sql.Tx, creditID uint64, amountCents int64) (bool, error) {
	result, err := tx.ExecContext(ctx,
		`UPDATE referral_credits SET remaining_cents = remaining_cents - ? WHERE id = ? AND remaining_cents >= ?`,
		amountCents, creditID, amountCents)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

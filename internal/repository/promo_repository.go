package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

// ErrPromoExhausted is returned by RedeemTx when the conditional
// increment matched no row because uses_so_far already reached
// max_uses.
var ErrPromoExhausted = errors.New("promo code exhausted")

// PromoRepo provides persistence for promo codes.  Codes are stored
// upper-case; lookups normalize the input.  Usage accounting goes
// through a single conditional increment so uses_so_far can never
// exceed max_uses, even under concurrent redemptions.
type PromoRepo struct {
	db *sql.DB
}

// NewPromoRepo returns a new PromoRepo bound to the given database.
func NewPromoRepo(db *sql.DB) *PromoRepo { return &PromoRepo{db: db} }

const promoCols = `id, code, discount_type, discount_value, valid_from, valid_until, min_order_amount_cents, max_uses, uses_so_far, applicable_to, created_at`

// Create inserts a new promo code and populates the generated ID.
// A duplicate code yields ErrConflict.
func (r *PromoRepo) Create(ctx context.Context, p *model.PromoCode) error {
	const q = `INSERT INTO promo_codes (code, discount_type, discount_value, valid_from, valid_until, min_order_amount_cents, max_uses, applicable_to) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		strings.ToUpper(strings.TrimSpace(p.Code)), p.DiscountType, p.DiscountValue,
		p.ValidFrom.UTC(), p.ValidUntil.UTC(), p.MinOrderAmountCents, p.MaxUses, p.ApplicableTo)
	if err != nil {
		// MySQL 1062 = duplicate entry on the unique code index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByCode fetches a promo code by its normalized code string.
func (r *PromoRepo) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	return r.getByCode(ctx, r.db, code)
}

// GetByCodeTx is GetByCode executed on an existing transaction.
func (r *PromoRepo) GetByCodeTx(ctx context.Context, tx *sql.Tx, code string) (*model.PromoCode, error) {
	return r.getByCode(ctx, tx, code)
}

func (r *PromoRepo) getByCode(ctx context.Context, q dbtx, code string) (*model.PromoCode, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+promoCols+` FROM promo_codes WHERE code = ? LIMIT 1`,
		strings.ToUpper(strings.TrimSpace(code)))
	var p model.PromoCode
	err := row.Scan(&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue,
		&p.ValidFrom, &p.ValidUntil, &p.MinOrderAmountCents,
		&p.MaxUses, &p.UsesSoFar, &p.ApplicableTo, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// RedeemTx consumes one use of the code with a single conditional
// increment.  It never reads uses_so_far first, so two concurrent
// redemptions at one remaining use cannot both succeed: the loser's
// UPDATE matches no row and ErrPromoExhausted is returned.
func (r *PromoRepo) RedeemTx(ctx context.Context, tx *sql.Tx, code string) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE promo_codes SET uses_so_far = uses_so_far + 1 WHERE code = ? AND uses_so_far < max_uses`,
		strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPromoExhausted
	}
	return nil
}

// List returns all promo codes ordered by creation time descending.
func (r *PromoRepo) List(ctx context.Context) ([]model.PromoCode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+promoCols+` FROM promo_codes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.PromoCode, 0)
	for rows.Next() {
		var p model.PromoCode
		if err := rows.Scan(&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue,
			&p.ValidFrom, &p.ValidUntil, &p.MinOrderAmountCents,
			&p.MaxUses, &p.UsesSoFar, &p.ApplicableTo, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

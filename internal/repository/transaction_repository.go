package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

// TransactionRepo appends rows to the transactions ledger.  The table
// is append-only: there are no update or delete operations, which makes
// it the authoritative source for revenue reporting.
type TransactionRepo struct {
	db *sql.DB
}

// NewTransactionRepo returns a new TransactionRepo bound to the given database.
func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionCols = `id, reference, user_id, amount_cents, type, status, reservation_id, enrollment_id, created_at`

// Create appends a ledger entry and populates its ID.
func (r *TransactionRepo) Create(ctx context.Context, t *model.Transaction) error {
	return r.create(ctx, r.db, t)
}

// CreateTx is Create executed within an existing transaction, so the
// ledger entry commits or rolls back together with the operation that
// produced it.
func (r *TransactionRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
	return r.create(ctx, tx, t)
}

func (r *TransactionRepo) create(ctx context.Context, q dbtx, t *model.Transaction) error {
	const query = `INSERT INTO transactions (reference, user_id, amount_cents, type, status, reservation_id, enrollment_id) VALUES (?, ?, ?, ?, ?, ?, ?)`
	var resID, enrID interface{}
	if t.ReservationID != nil {
		resID = *t.ReservationID
	}
	if t.EnrollmentID != nil {
		enrID = *t.EnrollmentID
	}
	result, err := q.ExecContext(ctx, query, t.Reference, t.UserID, t.AmountCents, t.Type, t.Status, resID, enrID)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// ListByUser returns a user's ledger entries, newest first.
func (r *TransactionRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Transaction, error) {
	return r.list(ctx, `WHERE user_id = ?`, userID)
}

// ListAll returns every ledger entry, newest first.  Intended for the
// admin reporting surface.
func (r *TransactionRepo) ListAll(ctx context.Context) ([]model.Transaction, error) {
	return r.list(ctx, ``)
}

func (r *TransactionRepo) list(ctx context.Context, where string, args ...interface{}) ([]model.Transaction, error) {
	query := `SELECT ` + transactionCols + ` FROM transactions ` + where + ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Transaction, 0)
	for rows.Next() {
		var t model.Transaction
		var resID, enrID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Reference, &t.UserID, &t.AmountCents, &t.Type, &t.Status, &resID, &enrID, &t.CreatedAt); err != nil {
			return nil, err
		}
		if resID.Valid {
			v := uint64(resID.Int64)
			t.ReservationID = &v
		}
		if enrID.Valid {
			v := uint64(enrID.Int64)
			t.EnrollmentID = &v
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

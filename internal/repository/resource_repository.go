package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

// ResourceRepo provides CRUD operations for bookable resources.  All
// timestamp fields are stored in UTC.  Resources referenced by
// reservations are never deleted; Delete refuses with ErrConflict and
// admins disable the resource instead.
type ResourceRepo struct {
	db *sql.DB
}

// NewResourceRepo returns a new ResourceRepo bound to the given database.
func NewResourceRepo(db *sql.DB) *ResourceRepo { return &ResourceRepo{db: db} }

const resourceCols = `id, name, type, capacity, hourly_rate_cents, daily_rate_cents, monthly_rate_cents, available, created_at, updated_at`

func scanResource(row *sql.Row) (*model.Resource, error) {
	var r model.Resource
	err := row.Scan(&r.ID, &r.Name, &r.Type, &r.Capacity,
		&r.HourlyRateCents, &r.DailyRateCents, &r.MonthlyRateCents,
		&r.Available, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// Create inserts a new resource and populates the generated ID and
// timestamps on the provided record.
func (r *ResourceRepo) Create(ctx context.Context, res *model.Resource) error {
	const q = `INSERT INTO resources (name, type, capacity, hourly_rate_cents, daily_rate_cents, monthly_rate_cents, available) VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, res.Name, res.Type, res.Capacity,
		res.HourlyRateCents, res.DailyRateCents, res.MonthlyRateCents, res.Available)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	got, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = *got
	return nil
}

// GetByID fetches a resource by id.  ErrNotFound is returned when no
// row exists.
func (r *ResourceRepo) GetByID(ctx context.Context, id uint64) (*model.Resource, error) {
	return r.getByID(ctx, r.db, id)
}

// GetByIDTx is GetByID executed on an existing transaction.
func (r *ResourceRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Resource, error) {
	return r.getByID(ctx, tx, id)
}

func (r *ResourceRepo) getByID(ctx context.Context, q dbtx, id uint64) (*model.Resource, error) {
	return scanResource(q.QueryRowContext(ctx,
		`SELECT `+resourceCols+` FROM resources WHERE id = ?`, id))
}

// LockTx acquires a row lock on the resource for the duration of the
// transaction.  Every check-then-write sequence touching a resource's
// calendar runs under this lock, which is what serializes competing
// booking attempts on the same resource.
func (r *ResourceRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	var got uint64
	err := tx.QueryRowContext(ctx, `SELECT id FROM resources WHERE id = ? FOR UPDATE`, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// List returns all resources, optionally restricted to available ones,
// ordered by name for deterministic output.
func (r *ResourceRepo) List(ctx context.Context, onlyAvailable bool) ([]model.Resource, error) {
	q := `SELECT ` + resourceCols + ` FROM resources`
	if onlyAvailable {
		q += ` WHERE available = 1`
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Resource, 0)
	for rows.Next() {
		var res model.Resource
		if err := rows.Scan(&res.ID, &res.Name, &res.Type, &res.Capacity,
			&res.HourlyRateCents, &res.DailyRateCents, &res.MonthlyRateCents,
			&res.Available, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Update overwrites the mutable fields of a resource.  ErrNotFound is
// returned when the id does not exist.
func (r *ResourceRepo) Update(ctx context.Context, res *model.Resource) error {
	const q = `UPDATE resources SET name = ?, type = ?, capacity = ?, hourly_rate_cents = ?, daily_rate_cents = ?, monthly_rate_cents = ?, available = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, res.Name, res.Type, res.Capacity,
		res.HourlyRateCents, res.DailyRateCents, res.MonthlyRateCents, res.Available, res.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing row and a no-op update;
		// distinguish with an existence probe.
		if _, err := r.GetByID(ctx, res.ID); err != nil {
			return err
		}
	}
	return nil
}

// SetAvailability flips the available flag.  Disabling a resource
// rejects all new booking requests regardless of calendar state while
// preserving existing reservations.
func (r *ResourceRepo) SetAvailability(ctx context.Context, id uint64, available bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE resources SET available = ? WHERE id = ?`, available, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a resource that has never been reserved.  When any
// reservation references the resource, ErrConflict is returned and the
// caller should soft-disable instead.
func (r *ResourceRepo) Delete(ctx context.Context, id uint64) error {
	var count int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE resource_id = ?`, id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

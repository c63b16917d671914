package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

// SubscriptionRepo provides persistence for subscription plans and the
// enrollments binding users to them.  Remaining hours on an enrollment
// are only ever mutated through a conditional decrement.
type SubscriptionRepo struct {
	db *sql.DB
}

// NewSubscriptionRepo returns a new SubscriptionRepo bound to the given database.
func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

// CreatePlan inserts a new subscription plan and populates its ID.
func (r *SubscriptionRepo) CreatePlan(ctx context.Context, p *model.SubscriptionPlan) error {
	const q = `INSERT INTO subscription_plans (name, price_cents, duration_days, included_hours, active) VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, p.Name, p.PriceCents, p.DurationDays, p.IncludedHours, p.Active)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetPlan fetches a plan by id.
func (r *SubscriptionRepo) GetPlan(ctx context.Context, id uint64) (*model.SubscriptionPlan, error) {
	var p model.SubscriptionPlan
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, price_cents, duration_days, included_hours, active, created_at FROM subscription_plans WHERE id = ?`,
		id).Scan(&p.ID, &p.Name, &p.PriceCents, &p.DurationDays, &p.IncludedHours, &p.Active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListPlans returns all plans, optionally only active ones.
func (r *SubscriptionRepo) ListPlans(ctx context.Context, onlyActive bool) ([]model.SubscriptionPlan, error) {
	q := `SELECT id, name, price_cents, duration_days, included_hours, active, created_at FROM subscription_plans`
	if onlyActive {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY price_cents`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.SubscriptionPlan, 0)
	for rows.Next() {
		var p model.SubscriptionPlan
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.DurationDays, &p.IncludedHours, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Enroll creates an enrollment for the user on the given plan starting
// now, seeding remaining_hours from the plan's included hours.
func (r *SubscriptionRepo) Enroll(ctx context.Context, userID uint64, plan *model.SubscriptionPlan, now time.Time) (*model.SubscriptionEnrollment, error) {
	starts := now.UTC()
	ends := starts.Add(time.Duration(plan.DurationDays) * 24 * time.Hour)
	const q = `INSERT INTO subscription_enrollments (user_id, plan_id, starts_at, ends_at, remaining_hours) VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, userID, plan.ID, starts, ends, plan.IncludedHours)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.SubscriptionEnrollment{
		ID:             uint64(id),
		UserID:         userID,
		PlanID:         plan.ID,
		StartsAt:       starts,
		EndsAt:         ends,
		RemainingHours: plan.IncludedHours,
	}, nil
}

// ActiveEnrollment returns the user's enrollment covering the given
// instant with hours left, or ErrNotFound.  When several overlap the
// one expiring first is preferred so hours are not stranded.
func (r *SubscriptionRepo) ActiveEnrollment(ctx context.Context, userID uint64, at time.Time) (*model.SubscriptionEnrollment, error) {
	return r.activeEnrollment(ctx, r.db, userID, at)
}

// ActiveEnrollmentTx is ActiveEnrollment executed on an existing transaction.
func (r *SubscriptionRepo) ActiveEnrollmentTx(ctx context.Context, tx *sql.Tx, userID uint64, at time.Time) (*model.SubscriptionEnrollment, error) {
	return r.activeEnrollment(ctx, tx, userID, at)
}

func (r *SubscriptionRepo) activeEnrollment(ctx context.Context, q dbtx, userID uint64, at time.Time) (*model.SubscriptionEnrollment, error) {
	const query = `SELECT id, user_id, plan_id, starts_at, ends_at, remaining_hours, created_at
	               FROM subscription_enrollments
	               WHERE user_id = ? AND starts_at <= ? AND ends_at > ? AND remaining_hours > 0
	               ORDER BY ends_at LIMIT 1`
	var e model.SubscriptionEnrollment
	err := q.QueryRowContext(ctx, query, userID, at.UTC(), at.UTC()).Scan(
		&e.ID, &e.UserID, &e.PlanID, &e.StartsAt, &e.EndsAt, &e.RemainingHours, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ConsumeHoursTx decrements remaining_hours by the given amount only if
// enough hours are left.  It reports whether the decrement happened;
// false means a concurrent booking consumed the hours first and the
// caller should re-plan without the subscription discount.
func (r *SubscriptionRepo) ConsumeHoursTx(ctx context.Context, tx *sql.Tx, enrollmentID uint64, hours uint32) (bool, error) {
	result, err := tx.ExecContext(ctx,
		`UPDATE subscription_enrollments SET remaining_hours = remaining_hours - ? WHERE id = ? AND remaining_hours >= ?`,
		hours, enrollmentID, hours)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

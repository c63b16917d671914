package model

import "time"

// SubscriptionPlan defines a recurring plan granting a bundle of
// included reservation hours over a period.  Plans are managed by
// admins; members enroll against them.
//
// Fields:
//  ID             – primary key identifier.
//  Name           – plan name (e.g. "Flex 20h").
//  PriceCents     – plan price in cents.
//  DurationDays   – length of one enrollment period.
//  IncludedHours  – reservation hours included per period.
//  Active         – whether new enrollments are accepted.
//  CreatedAt      – creation timestamp.
type SubscriptionPlan struct {
	ID            uint64    // subscription_plans.id
	Name          string    // subscription_plans.name
	PriceCents    int64     // subscription_plans.price_cents
	DurationDays  uint32    // subscription_plans.duration_days
	IncludedHours uint32    // subscription_plans.included_hours
	Active        bool      // subscription_plans.active
	CreatedAt     time.Time // subscription_plans.created_at
}

// SubscriptionEnrollment binds a user to a plan for [StartsAt, EndsAt]
// and tracks the reservation hours still available.  RemainingHours is
// only mutated through a conditional decrement, so two concurrent
// bookings can never both consume the last hour.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – enrolled user.
//  PlanID         – plan being enrolled in.
//  StartsAt       – start of the enrollment period (UTC).
//  EndsAt         – end of the enrollment period (UTC).
//  RemainingHours – reservation hours left in this period.
//  CreatedAt      – creation timestamp.
type SubscriptionEnrollment struct {
	ID             uint64    // subscription_enrollments.id
	UserID         uint64    // subscription_enrollments.user_id
	PlanID         uint64    // subscription_enrollments.plan_id
	StartsAt       time.Time // subscription_enrollments.starts_at
	EndsAt         time.Time // subscription_enrollments.ends_at
	RemainingHours uint32    // subscription_enrollments.remaining_hours
	CreatedAt      time.Time // subscription_enrollments.created_at
}

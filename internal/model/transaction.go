package model

import "time"

// Transaction types and statuses.  The ledger is append-only and is
// the authoritative source for revenue reporting; rows are never
// updated or deleted.
const (
	TransactionPayment = "payment"
	TransactionRefund  = "refund"
	TransactionCredit  = "credit"

	TransactionCompleted = "completed"
)

// Transaction is an immutable ledger entry linked to a reservation or
// a subscription enrollment.  Reference carries an opaque UUID handed
// to external payment collaborators.
//
// Fields:
//  ID            – primary key identifier.
//  Reference     – unique UUID string for external correlation.
//  UserID        – user the entry belongs to.
//  AmountCents   – amount in cents (always positive; Type gives sign).
//  Type          – payment, refund or credit.
//  Status        – ledger status (currently always completed).
//  ReservationID – linked reservation, if any (nullable).
//  EnrollmentID  – linked subscription enrollment, if any (nullable).
//  CreatedAt     – creation timestamp.
type Transaction struct {
	ID            uint64    // transactions.id
	Reference     string    // transactions.reference
	UserID        uint64    // transactions.user_id
	AmountCents   int64     // transactions.amount_cents
	Type          string    // transactions.type
	Status        string    // transactions.status
	ReservationID *uint64   // transactions.reservation_id (nullable)
	EnrollmentID  *uint64   // transactions.enrollment_id (nullable)
	CreatedAt     time.Time // transactions.created_at
}

// Package queue defines the message payloads exchanged over the broker
// and the background consumer that records them.
package queue

// Queue names, one durable queue per lifecycle event.
const (
	ReservationCreatedQueue   = "reservation.created"
	ReservationConfirmedQueue = "reservation.confirmed"
	ReservationCancelledQueue = "reservation.cancelled"
)

// ReservationEvent is published on every reservation lifecycle
// transition.  It carries enough for downstream consumers to notify or
// run analytics without querying the primary database.
type ReservationEvent struct {
	Kind             string `json:"kind"` // created, confirmed or cancelled
	ReservationID    uint64 `json:"reservation_id"`
	UserID           uint64 `json:"user_id"`
	ResourceID       uint64 `json:"resource_id"`
	ResourceName     string `json:"resource_name,omitempty"`
	StartsAt         string `json:"starts_at"`
	EndsAt           string `json:"ends_at"`
	ParticipantCount uint32 `json:"participant_count"`
	Status           string `json:"status"`
	BasePriceCents   int64  `json:"base_price_cents"`
	FinalPriceCents  int64  `json:"final_price_cents"`
	PromoCode        string `json:"promo_code,omitempty"`
	OccurredAt       string `json:"occurred_at"`
}

package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/coworking-reservation/internal/model"
	"github.com/iliyamo/coworking-reservation/internal/pricing"
)

// EventPublisher receives reservation lifecycle notifications.  The
// engine only emits events; delivery is someone else's problem, and a
// publish failure never fails the operation that produced it.
type EventPublisher interface {
	ReservationCreated(ctx context.Context, r *model.Reservation)
	ReservationConfirmed(ctx context.Context, r *model.Reservation)
	ReservationCancelled(ctx context.Context, r *model.Reservation)
}

// Service drives the reservation lifecycle.  Every mutating operation
// commits all-or-nothing through Store.Atomically; availability reads
// outside a critical section are advisory only and are always
// re-checked under the per-resource lock before a write.
type Service struct {
	store  Store
	events EventPublisher
	now    func() time.Time
}

// NewService constructs a Service.  events may be nil when no broker
// is configured.
func NewService(store Store, events EventPublisher) *Service {
	if store == nil {
		panic("nil store passed to NewService")
	}
	return &Service{store: store, events: events, now: func() time.Time { return time.Now().UTC() }}
}

// CreateRequest carries the input of a booking request as supplied by
// the form layer.
type CreateRequest struct {
	ResourceID       uint64
	UserID           uint64
	StartsAt         time.Time
	EndsAt           time.Time
	ParticipantCount uint32
	PromoCode        string
}

// CheckAvailability answers whether [start, end) is bookable on the
// resource.  It is a pure read: the commit path re-checks under the
// resource lock, so a true answer here can still lose the race.
// On rejection due to an existing reservation the conflicting id is
// returned for diagnostics.
func (s *Service) CheckAvailability(ctx context.Context, resourceID uint64, start, end time.Time) (uint64, error) {
	start, end = start.UTC(), end.UTC()
	if err := validateInterval(start, end, s.now()); err != nil {
		return 0, err
	}
	res, err := s.store.GetResource(ctx, resourceID)
	if err != nil {
		return 0, err
	}
	if !res.Available {
		return 0, &ConflictError{ResourceID: resourceID, Reason: "resource is not available"}
	}
	conflictID, found, err := s.store.OverlappingReservation(ctx, resourceID, start, end, 0)
	if err != nil {
		return 0, err
	}
	if found {
		return conflictID, &ConflictError{ResourceID: resourceID, ConflictingID: conflictID, Reason: "interval already reserved"}
	}
	return 0, nil
}

// Create validates a booking request, prices it, and persists a
// pending reservation.  The overlap check and the insert run under the
// per-resource lock, so two concurrent requests for the same slot can
// never both produce a pending row.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.Reservation, error) {
	now := s.now()
	start, end := req.StartsAt.UTC(), req.EndsAt.UTC()
	if err := validateInterval(start, end, now); err != nil {
		return nil, err
	}
	if req.ParticipantCount == 0 {
		return nil, &ValidationError{Field: "participant_count", Reason: "must be at least 1"}
	}

	res, err := s.store.GetResource(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	if req.ParticipantCount > res.Capacity {
		return nil, &ValidationError{Field: "participant_count", Reason: "exceeds resource capacity"}
	}
	if !res.Available {
		return nil, &ConflictError{ResourceID: res.ID, Reason: "resource is not available"}
	}

	base, err := pricing.Quote(res, start, end)
	if err != nil {
		return nil, &ValidationError{Field: "interval", Reason: err.Error()}
	}

	var created *model.Reservation
	err = s.store.Atomically(ctx, res.ID, func(st Store) error {
		conflictID, found, err := st.OverlappingReservation(ctx, res.ID, start, end, 0)
		if err != nil {
			return err
		}
		if found {
			return &ConflictError{ResourceID: res.ID, ConflictingID: conflictID, Reason: "interval already reserved"}
		}
		// The projected final price is recorded on the pending row for
		// display; nothing is consumed until confirmation.
		plan, err := planDiscounts(ctx, st, res, req.UserID, start, end, req.PromoCode, base, now)
		if err != nil {
			return err
		}
		r := &model.Reservation{
			ResourceID:       res.ID,
			UserID:           req.UserID,
			StartsAt:         start,
			EndsAt:           end,
			ParticipantCount: req.ParticipantCount,
			Status:           model.ReservationPending,
			BasePriceCents:   base,
			FinalPriceCents:  plan.FinalPriceCents,
		}
		if plan.PromoCode != "" {
			code := plan.PromoCode
			r.PromoCode = &code
		}
		if err := st.InsertReservation(ctx, r); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.ReservationCreated(ctx, created)
	}
	return created, nil
}

// Confirm finalizes a pending reservation.  Under the per-resource
// lock it re-checks availability (closing the race window left by the
// advisory read), consumes subscription hours, redeems the promo code
// exactly once, consumes referral credits and appends the payment to
// the ledger, all in one commit.  A reservation that lost the slot
// race gets ConflictError and stays pending.
func (s *Service) Confirm(ctx context.Context, id uint64) (*model.Reservation, error) {
	now := s.now()
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != model.ReservationPending {
		return nil, &InvalidStateError{ReservationID: id, From: r.Status, To: model.ReservationConfirmed}
	}

	var confirmed *model.Reservation
	err = s.store.Atomically(ctx, r.ResourceID, func(st Store) error {
		cur, err := st.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		if cur.Status != model.ReservationPending {
			return &InvalidStateError{ReservationID: id, From: cur.Status, To: model.ReservationConfirmed}
		}
		res, err := st.GetResource(ctx, cur.ResourceID)
		if err != nil {
			return err
		}
		if !res.Available {
			return &ConflictError{ResourceID: res.ID, Reason: "resource is not available"}
		}
		conflictID, found, err := st.OverlappingReservation(ctx, cur.ResourceID, cur.StartsAt, cur.EndsAt, cur.ID)
		if err != nil {
			return err
		}
		if found {
			return &ConflictError{ResourceID: cur.ResourceID, ConflictingID: conflictID, Reason: "lost confirmation race"}
		}

		promo := ""
		if cur.PromoCode != nil && !cur.PromoRedeemed {
			promo = *cur.PromoCode
		}
		plan, err := planDiscounts(ctx, st, res, cur.UserID, cur.StartsAt, cur.EndsAt, promo, cur.BasePriceCents, now)
		if err != nil {
			return err
		}

		if plan.EnrollmentID != 0 {
			ok, err := st.ConsumeEnrollmentHours(ctx, plan.EnrollmentID, plan.SubscriptionHours)
			if err != nil {
				return err
			}
			if !ok {
				// Hours vanished under a concurrent booking; re-plan
				// without the subscription discount.
				plan, err = planDiscounts(ctx, st, res, cur.UserID, cur.StartsAt, cur.EndsAt, promo, cur.BasePriceCents, now)
				if err != nil {
					return err
				}
				plan.EnrollmentID = 0
				plan.SubscriptionHours = 0
			}
		}
		if plan.PromoCode != "" {
			if err := st.RedeemPromoCode(ctx, plan.PromoCode); err != nil {
				if errors.Is(err, ErrPromoExhausted) {
					return &PromoInvalidError{Code: plan.PromoCode, Reason: PromoReasonExhausted}
				}
				return err
			}
			if err := st.MarkPromoRedeemed(ctx, cur.ID); err != nil {
				return err
			}
		}
		for _, use := range plan.CreditUses {
			ok, err := st.ConsumeCredit(ctx, use.CreditID, use.AmountCents)
			if err != nil {
				return err
			}
			if !ok {
				// Credit raced away; the member simply pays the part it
				// would have covered.
				plan.FinalPriceCents += use.AmountCents
				plan.CreditCents -= use.AmountCents
			}
		}

		ok, err := st.ConfirmReservation(ctx, cur.ID, plan.FinalPriceCents)
		if err != nil {
			return err
		}
		if !ok {
			return &InvalidStateError{ReservationID: cur.ID, From: cur.Status, To: model.ReservationConfirmed}
		}
		resID := cur.ID
		if err := st.AppendTransaction(ctx, &model.Transaction{
			Reference:     uuid.NewString(),
			UserID:        cur.UserID,
			AmountCents:   plan.FinalPriceCents,
			Type:          model.TransactionPayment,
			Status:        model.TransactionCompleted,
			ReservationID: &resID,
		}); err != nil {
			return err
		}
		cur.Status = model.ReservationConfirmed
		cur.FinalPriceCents = plan.FinalPriceCents
		if plan.PromoCode != "" {
			cur.PromoRedeemed = true
		}
		confirmed = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.ReservationConfirmed(ctx, confirmed)
	}
	return confirmed, nil
}

// Cancel transitions a pending or confirmed reservation to cancelled.
// Terminal and in-progress reservations refuse with InvalidStateError,
// and a second cancel of the same reservation fails the same way.  A
// cancelled confirmed reservation gets a refund entry in the ledger;
// the actual money movement is the payment collaborator's job.
func (s *Service) Cancel(ctx context.Context, id, actorID uint64) (*model.Reservation, error) {
	now := s.now()
	var cancelled *model.Reservation
	err := s.store.Atomically(ctx, 0, func(st Store) error {
		r, err := st.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		eff := r.EffectiveStatus(now)
		if eff != model.ReservationPending && eff != model.ReservationConfirmed {
			return &InvalidStateError{ReservationID: id, From: eff, To: model.ReservationCancelled}
		}
		wasConfirmed := r.Status == model.ReservationConfirmed
		ok, err := st.UpdateReservationStatus(ctx, id,
			[]string{model.ReservationPending, model.ReservationConfirmed}, model.ReservationCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return &InvalidStateError{ReservationID: id, From: r.Status, To: model.ReservationCancelled}
		}
		if wasConfirmed && r.FinalPriceCents > 0 {
			resID := r.ID
			if err := st.AppendTransaction(ctx, &model.Transaction{
				Reference:     uuid.NewString(),
				UserID:        r.UserID,
				AmountCents:   r.FinalPriceCents,
				Type:          model.TransactionRefund,
				Status:        model.TransactionCompleted,
				ReservationID: &resID,
			}); err != nil {
				return err
			}
		}
		r.Status = model.ReservationCancelled
		cancelled = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.ReservationCancelled(ctx, cancelled)
	}
	return cancelled, nil
}

// Get returns a reservation with its effective, wall-clock derived
// status.
func (s *Service) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Status = r.EffectiveStatus(s.now())
	return r, nil
}

// RunStatusSweeper periodically persists wall-clock derived status
// transitions and cancels stale pending reservations.  It blocks until
// ctx is cancelled.
func (s *Service) RunStatusSweeper(ctx context.Context, interval, pendingTTL time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Printf("status-sweeper: running every %s (pending TTL %s)", interval, pendingTTL)
	for {
		select {
		case <-ctx.Done():
			log.Printf("status-sweeper: stopped")
			return
		case <-ticker.C:
			now := s.now()
			if n, err := s.store.PromoteReservationStatuses(ctx, now); err != nil {
				log.Printf("status-sweeper: promote failed: %v", err)
			} else if n > 0 {
				log.Printf("status-sweeper: promoted %d reservations", n)
			}
			if n, err := s.store.CancelStalePending(ctx, now.Add(-pendingTTL)); err != nil {
				log.Printf("status-sweeper: stale pending cleanup failed: %v", err)
			} else if n > 0 {
				log.Printf("status-sweeper: cancelled %d stale pending reservations", n)
			}
		}
	}
}

// validateInterval enforces the half-open interval rules shared by
// availability checks and creation: start strictly before end, start
// not in the past relative to the server clock.
func validateInterval(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return &ValidationError{Field: "interval", Reason: "start and end are required"}
	}
	if !start.Before(end) {
		return &ValidationError{Field: "interval", Reason: "start must be before end"}
	}
	if start.Before(now) {
		return &ValidationError{Field: "interval", Reason: "start is in the past"}
	}
	return nil
}

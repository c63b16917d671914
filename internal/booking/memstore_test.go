package booking

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

// memStore is an in-memory Store used by the engine tests.  Atomically
// holds a single mutex for the whole critical section, which gives the
// same serialization guarantee the SQL implementation gets from its
// per-resource row lock.
type memStore struct {
	mu sync.Mutex

	resources    map[uint64]*model.Resource
	reservations map[uint64]*model.Reservation
	promos       map[string]*model.PromoCode
	enrollments  map[uint64]*model.SubscriptionEnrollment
	credits      []*model.ReferralCredit
	transactions []*model.Transaction

	reservationSeq uint64
	creditSeq      uint64
}

func newMemStore() *memStore {
	return &memStore{
		resources:    make(map[uint64]*model.Resource),
		reservations: make(map[uint64]*model.Reservation),
		promos:       make(map[string]*model.PromoCode),
		enrollments:  make(map[uint64]*model.SubscriptionEnrollment),
	}
}

func (m *memStore) addResource(r *model.Resource)               { m.resources[r.ID] = r }
func (m *memStore) addPromo(p *model.PromoCode)                 { m.promos[p.Code] = p }
func (m *memStore) addEnrollment(e *model.SubscriptionEnrollment) { m.enrollments[e.ID] = e }

func (m *memStore) addCredit(userID uint64, amountCents int64) *model.ReferralCredit {
	m.creditSeq++
	c := &model.ReferralCredit{
		ID:             m.creditSeq,
		UserID:         userID,
		AmountCents:    amountCents,
		RemainingCents: amountCents,
	}
	m.credits = append(m.credits, c)
	return c
}

// Unlocked data operations shared by the outer store and the
// transaction-bound view.

func (m *memStore) getResource(id uint64) (*model.Resource, error) {
	r, ok := m.resources[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) getReservation(id uint64) (*model.Reservation, error) {
	r, ok := m.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) insertReservation(r *model.Reservation) error {
	m.reservationSeq++
	r.ID = m.reservationSeq
	cp := *r
	m.reservations[r.ID] = &cp
	return nil
}

func (m *memStore) overlapping(resourceID uint64, start, end time.Time, excludeID uint64) (uint64, bool, error) {
	var best uint64
	for id, r := range m.reservations {
		if r.ResourceID != resourceID || id == excludeID {
			continue
		}
		switch r.Status {
		case model.ReservationPending, model.ReservationConfirmed, model.ReservationInProgress:
		default:
			continue
		}
		if r.Overlaps(start, end) && (best == 0 || id < best) {
			best = id
		}
	}
	return best, best != 0, nil
}

func (m *memStore) confirmReservation(id uint64, finalPriceCents int64) (bool, error) {
	r, ok := m.reservations[id]
	if !ok || r.Status != model.ReservationPending {
		return false, nil
	}
	r.Status = model.ReservationConfirmed
	r.FinalPriceCents = finalPriceCents
	return true, nil
}

func (m *memStore) updateStatus(id uint64, from []string, to string) (bool, error) {
	r, ok := m.reservations[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if r.Status == f {
			r.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) markPromoRedeemed(id uint64) error {
	r, ok := m.reservations[id]
	if !ok {
		return ErrNotFound
	}
	r.PromoRedeemed = true
	return nil
}

func (m *memStore) getPromo(code string) (*model.PromoCode, error) {
	p, ok := m.promos[code]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) redeemPromo(code string) error {
	p, ok := m.promos[code]
	if !ok {
		return ErrNotFound
	}
	if p.UsesSoFar >= p.MaxUses {
		return ErrPromoExhausted
	}
	p.UsesSoFar++
	return nil
}

func (m *memStore) activeEnrollment(userID uint64, at time.Time) (*model.SubscriptionEnrollment, error) {
	var best *model.SubscriptionEnrollment
	for _, e := range m.enrollments {
		if e.UserID != userID || e.RemainingHours == 0 {
			continue
		}
		if at.Before(e.StartsAt) || !at.Before(e.EndsAt) {
			continue
		}
		if best == nil || e.EndsAt.Before(best.EndsAt) {
			best = e
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *memStore) consumeHours(enrollmentID uint64, hours uint32) (bool, error) {
	e, ok := m.enrollments[enrollmentID]
	if !ok || e.RemainingHours < hours {
		return false, nil
	}
	e.RemainingHours -= hours
	return true, nil
}

func (m *memStore) availableCredits(userID uint64) ([]model.ReferralCredit, error) {
	var out []model.ReferralCredit
	for _, c := range m.credits {
		if c.UserID == userID && c.RemainingCents > 0 {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) consumeCredit(creditID uint64, amountCents int64) (bool, error) {
	for _, c := range m.credits {
		if c.ID == creditID {
			if c.RemainingCents < amountCents {
				return false, nil
			}
			c.RemainingCents -= amountCents
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) appendTransaction(t *model.Transaction) error {
	cp := *t
	cp.ID = uint64(len(m.transactions) + 1)
	m.transactions = append(m.transactions, &cp)
	return nil
}

func (m *memStore) promoteStatuses(now time.Time) (int64, error) {
	var n int64
	for _, r := range m.reservations {
		eff := r.EffectiveStatus(now)
		if eff != r.Status {
			r.Status = eff
			n++
		}
	}
	return n, nil
}

func (m *memStore) cancelStalePending(before time.Time) (int64, error) {
	var n int64
	for _, r := range m.reservations {
		if r.Status == model.ReservationPending && r.CreatedAt.Before(before) {
			r.Status = model.ReservationCancelled
			n++
		}
	}
	return n, nil
}

// Store interface, locking variant.

func (m *memStore) GetResource(ctx context.Context, id uint64) (*model.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getResource(id)
}

func (m *memStore) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getReservation(id)
}

func (m *memStore) InsertReservation(ctx context.Context, r *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertReservation(r)
}

func (m *memStore) OverlappingReservation(ctx context.Context, resourceID uint64, start, end time.Time, excludeID uint64) (uint64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlapping(resourceID, start, end, excludeID)
}

func (m *memStore) ConfirmReservation(ctx context.Context, id uint64, finalPriceCents int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.confirmReservation(id, finalPriceCents)
}

func (m *memStore) UpdateReservationStatus(ctx context.Context, id uint64, from []string, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateStatus(id, from, to)
}

func (m *memStore) MarkPromoRedeemed(ctx context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markPromoRedeemed(id)
}

func (m *memStore) GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getPromo(code)
}

func (m *memStore) RedeemPromoCode(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.redeemPromo(code)
}

func (m *memStore) ActiveEnrollment(ctx context.Context, userID uint64, at time.Time) (*model.SubscriptionEnrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeEnrollment(userID, at)
}

func (m *memStore) ConsumeEnrollmentHours(ctx context.Context, enrollmentID uint64, hours uint32) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consumeHours(enrollmentID, hours)
}

func (m *memStore) AvailableCredits(ctx context.Context, userID uint64) ([]model.ReferralCredit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.availableCredits(userID)
}

func (m *memStore) ConsumeCredit(ctx context.Context, creditID uint64, amountCents int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consumeCredit(creditID, amountCents)
}

func (m *memStore) AppendTransaction(ctx context.Context, t *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendTransaction(t)
}

func (m *memStore) Atomically(ctx context.Context, resourceID uint64, fn func(s Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTx{s: m})
}

func (m *memStore) PromoteReservationStatuses(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.promoteStatuses(now)
}

func (m *memStore) CancelStalePending(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelStalePending(before)
}

// memTx is the view handed to an Atomically callback.  The mutex is
// already held, so its methods go straight to the data operations.
type memTx struct {
	s *memStore
}

func (t *memTx) GetResource(ctx context.Context, id uint64) (*model.Resource, error) {
	return t.s.getResource(id)
}

func (t *memTx) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	return t.s.getReservation(id)
}

func (t *memTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	return t.s.insertReservation(r)
}

func (t *memTx) OverlappingReservation(ctx context.Context, resourceID uint64, start, end time.Time, excludeID uint64) (uint64, bool, error) {
	return t.s.overlapping(resourceID, start, end, excludeID)
}

func (t *memTx) ConfirmReservation(ctx context.Context, id uint64, finalPriceCents int64) (bool, error) {
	return t.s.confirmReservation(id, finalPriceCents)
}

func (t *memTx) UpdateReservationStatus(ctx context.Context, id uint64, from []string, to string) (bool, error) {
	return t.s.updateStatus(id, from, to)
}

func (t *memTx) MarkPromoRedeemed(ctx context.Context, id uint64) error {
	return t.s.markPromoRedeemed(id)
}

func (t *memTx) GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error) {
	return t.s.getPromo(code)
}

func (t *memTx) RedeemPromoCode(ctx context.Context, code string) error {
	return t.s.redeemPromo(code)
}

func (t *memTx) ActiveEnrollment(ctx context.Context, userID uint64, at time.Time) (*model.SubscriptionEnrollment, error) {
	return t.s.activeEnrollment(userID, at)
}

func (t *memTx) ConsumeEnrollmentHours(ctx context.Context, enrollmentID uint64, hours uint32) (bool, error) {
	return t.s.consumeHours(enrollmentID, hours)
}

func (t *memTx) AvailableCredits(ctx context.Context, userID uint64) ([]model.ReferralCredit, error) {
	return t.s.availableCredits(userID)
}

func (t *memTx) ConsumeCredit(ctx context.Context, creditID uint64, amountCents int64) (bool, error) {
	return t.s.consumeCredit(creditID, amountCents)
}

func (t *memTx) AppendTransaction(ctx context.Context, tr *model.Transaction) error {
	return t.s.appendTransaction(tr)
}

func (t *memTx) Atomically(ctx context.Context, resourceID uint64, fn func(s Store) error) error {
	return fn(t)
}

func (t *memTx) PromoteReservationStatuses(ctx context.Context, now time.Time) (int64, error) {
	return t.s.promoteStatuses(now)
}

func (t *memTx) CancelStalePending(ctx context.Context, before time.Time) (int64, error) {
	return t.s.cancelStalePending(before)
}

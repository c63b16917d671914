package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

var testClock = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

// recordingPublisher counts lifecycle events for assertions.
type recordingPublisher struct {
	mu                             sync.Mutex
	created, confirmed, cancelled int
}

func (p *recordingPublisher) ReservationCreated(ctx context.Context, r *model.Reservation) {
	p.mu.Lock()
	p.created++
	p.mu.Unlock()
}

func (p *recordingPublisher) ReservationConfirmed(ctx context.Context, r *model.Reservation) {
	p.mu.Lock()
	p.confirmed++
	p.mu.Unlock()
}

func (p *recordingPublisher) ReservationCancelled(ctx context.Context, r *model.Reservation) {
	p.mu.Lock()
	p.cancelled++
	p.mu.Unlock()
}

func newTestService(store Store, events EventPublisher, at time.Time) *Service {
	svc := NewService(store, events)
	svc.now = func() time.Time { return at }
	return svc
}

func testBooth() *model.Resource {
	return &model.Resource{
		ID:              1,
		Name:            "Booth B2",
		Type:            model.ResourceBooth,
		Capacity:        4,
		HourlyRateCents: 1500,
		DailyRateCents:  9000,
		Available:       true,
	}
}

func TestReservationLifecycle(t *testing.T) {
	store := newMemStore()
	store.addResource(testBooth())
	events := &recordingPublisher{}
	svc := newTestService(store, events, testClock)
	ctx := context.Background()

	r, err := svc.Create(ctx, CreateRequest{
		ResourceID:       1,
		UserID:           7,
		StartsAt:         testClock.Add(1 * time.Hour),
		EndsAt:           testClock.Add(3 * time.Hour),
		ParticipantCount: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, r.Status)
	assert.Equal(t, int64(3000), r.BasePriceCents)
	assert.Equal(t, int64(3000), r.FinalPriceCents)

	confirmed, err := svc.Confirm(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationConfirmed, confirmed.Status)
	assert.Equal(t, int64(3000), confirmed.FinalPriceCents)
	require.Len(t, store.transactions, 1)
	assert.Equal(t, model.TransactionPayment, store.transactions[0].Type)
	assert.Equal(t, int64(3000), store.transactions[0].AmountCents)

	cancelled, err := svc.Cancel(ctx, r.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, cancelled.Status)
	require.Len(t, store.transactions, 2)
	assert.Equal(t, model.TransactionRefund, store.transactions[1].Type)
	assert.Equal(t, int64(3000), store.transactions[1].AmountCents)

	assert.Equal(t, 1, events.created)
	assert.Equal(t, 1, events.confirmed)
	assert.Equal(t, 1, events.cancelled)
}

func TestCreateBackToBackWindows(t *testing.T) {
	store := newMemStore()
	store.addResource(testBooth())
	svc := newTestService(store, nil, testClock)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateRequest{
		ResourceID: 1, UserID: 1, ParticipantCount: 1,
		StartsAt: testClock.Add(1 * time.Hour),
		EndsAt:   testClock.Add(3 * time.Hour),
	})
	require.NoError(t, err)

	// Shared endpoint, half-open windows: no overlap.
	second, err := svc.Create(ctx, CreateRequest{
		ResourceID: 1, UserID: 2, ParticipantCount: 1,
		StartsAt: testClock.Add(3 * time.Hour),
		EndsAt:   testClock.Add(5 * time.Hour),
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateOverlapConflict(t *testing.T) {
	store := newMemStore()
	store.addResource(testBooth())
	svc := newTestService(store, nil, testClock)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateRequest{
		ResourceID: 1, UserID: 1, ParticipantCount: 1,
		StartsAt: testClock.Add(1 * time.Hour),
		EndsAt:   testClock.Add(3 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateRequest{
		ResourceID: 1, UserID: 2, ParticipantCount: 1,
		StartsAt: testClock.Add(2 * time.Hour),
		EndsAt:   testClock.Add(4 * time.Hour),
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ID, conflict.ConflictingID)
}

func TestCreateValidation(t *testing.T) {
	store := newMemStore()
	store.addResource(testBooth())
	svc := newTestService(store, nil, testClock)
	ctx := context.Background()

	cases := []struct {
		name  string
		req   CreateRequest
		field string
	}{
		{
			name: "empty window",
			req: CreateRequest{
				ResourceID: 1, UserID: 1, ParticipantCount: 1,
				StartsAt: testClock.Add(time.Hour),
				EndsAt:   testClock.Add(time.Hour),
			},
			field: "interval",
		},
		{
			name: "start after end",
			req: CreateRequest{
				ResourceID: 1, UserID: 1, ParticipantCount: 1,
				StartsAt: testClock.Add(2 * time.Hour),
				EndsAt:   testClock.Add(time.Hour),
			},
			field: "interval",
		},
		{
			name: "start in the past",
			req: CreateRequest{
				ResourceID: 1, UserID: 1, ParticipantCount: 1,
				StartsAt: testClock.Add(-time.Hour),
				EndsAt:   testClock.Add(time.Hour),
			},
			field: "interval",
		},
		{
			name: "zero participants",
			req: CreateRequest{
				ResourceID: 1, UserID: 1,
				StartsAt: testClock.Add(time.Hour),
				EndsAt:   testClock.Add(2 * time.Hour),
			},
			field: "participant_count",
		},
		{
			name: "over capacity",
			req: CreateRequest{
				ResourceID: 1, UserID: 1, ParticipantCount: 5,
				StartsAt: testClock.Add(time.Hour),
				EndsAt:   testClock.Add(2 * time.Hour),
			},
			field: "participant_count",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
	assert.Empty(t, store.reservations, "no reservation row may exist after rejected input")
}

func TestCreateOnDisabledResource(t *testing.T) {
	store := newMemStore()
	booth := testBooth()
	booth.Available = false
	store.addResource(booth)
	svc := newTestService(store, nil, testClock)

	_, err := svc.Create(context.Background(), CreateRequest{
		ResourceID: 1, UserID: 1, ParticipantCount: 1,
		StartsAt: testClock.Add(time.Hour),
		EndsAt:   testClock.Add(2 * time.Hour),
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Zero(t, conflict.ConflictingID)
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	store := newMemStore()
	store.addResource(testBooth())
	svc := newTestService(store, nil, testClock)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), CreateRequest{
				ResourceID: 1, UserID: uint64(i + 1), ParticipantCount: 1,
				StartsAt: testClock.Add(1 * time.Hour),
				EndsAt:   testClock.Add(2 * time.Hour),
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
	}
	assert.Equal(t, 1, wins, "exactly one request may take the slot")
	assert.Len(t, store.reservations, 1)
}

func TestPromoAppliedAtConfirmation(t *testing.T) {
	store := newMemStore()
	store.addResource(testBooth())
	store.addPromo(&model.PromoCode{
		Code:          "SAVE20",
		DiscountType:  model.DiscountPercentage,
		DiscountValue: 20,
		ValidFrom:     testClock.Add(-time.Hour),
		ValidUntil:    testClock.Add(240 * time.Hour),
		MaxUses:       10,
		ApplicableTo:  model.PromoScopeAll,
	})
	svc := newTestService(store, nil, testClock)
	ctx := context.Background()

	r, err := svc.Create(ctx, CreateRequest{
		ResourceID: 1, UserID: 1, ParticipantCount: 1,
		StartsAt:  testClock.Add(1 * time.Hour),
		EndsAt:    testClock.Add(3 * time.Hour),
		PromoCode: "SAVE20",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), r.BasePriceCents)
	assert.Equal(t, int64(2400), r.FinalPriceCents, "projected price shows the discount")
	assert.Equal(t, uint32(0), store.promos["SAVE20"].UsesSoFar, "creation must not consume a use")

	confirmed, err := svc.Confirm(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2400), confirmed.FinalPriceCents)
	assert.True(t, confirmed.PromoRedeemed)
	assert.Equal(t, uint32(1), store.promos["SAVE20"].UsesSoFar)
}

func TestPromoLastUseSingleWinner(t *testing.T) {
	store := newMemStore()
	boothA := testBooth()
	boothB := testBooth()
	boothB.ID = 2
	store.addResource(boothA)
	store.addResource(boothB)
	store.addPromo(&model.PromoCode{
		Code:          "LAST1",
		DiscountType:  model.DiscountFixed,
		DiscountValue: 500,
		ValidFrom:     testClock.Add(-time.Hour),
		ValidUntil:    testClock.Add(240 * time.Hour),
		MaxUses:       1,
		ApplicableTo:  model.PromoScopeReservation,
	})
	svc := newTestService(store, nil, testClock)
	ctx := context.Background()

	var ids []uint64
	for _, resourceID := range []uint64{1, 2} {
		r, err := svc.Create(ctx, CreateRequest{
			ResourceID: resourceID, UserID: resourceID, ParticipantCount: 1,
			StartsAt:  testClock.Add(1 * time.Hour),
			EndsAt:    testClock.Add(3 * time.Hour),
			PromoCode: "LAST1",
		})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uint64) {
			defer wg.Done()
			_, errs[i] = svc.Confirm(ctx, id)
		}(i, id)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		var perr *PromoInvalidError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, PromoReasonExhausted, perr.Reason)
	}
	assert.Equal(t, 1, wins, "a promo with one use left confirms exactly one reservation")
	assert.Equal(t, uint32(1), store.promos["LAST1"].UsesSoFar)
}

func TestDiscountStackingOrder(t *testing.T) {
	store := newMemStore()
	booth := testBooth()
	booth.HourlyRateCents = 1000
	booth.DailyRateCents = 0
	store.addResource(booth)
	store.addEnrollment(&model.SubscriptionEnrollment{
		ID: 1, UserID: 9, PlanID: 1,
		StartsAt:       testClock.Add(-24 * time.Hour),
		EndsAt:         testClock.Add(240 * time.Hour),
		RemainingHours: 2,
	})
	store.addPromo(&model.PromoCode{
		Code:          "HALF",
		DiscountType:  model.DiscountPercentage,
		DiscountValue: 50,
		ValidFrom:     testClock.Add(-time.Hour),
		ValidUntil:    testClock.Add(240 * time.Hour),
		MaxUses:       5,
		ApplicableTo:  model.PromoScopeAll,
	})
	store.addCredit(9, 600)
	store.addCredit(9, 600)
	svc := newTestService(store, nil, testClock)
	ctx := context.Background()

	// 4h at 1000/h: base 4000.  Subscription covers 2h (-2000), the
	// promo halves the rest (-1000), credits cover the remaining 1000.
	r, err := svc.Create(ctx, CreateRequest{
		ResourceID: 1, UserID: 9, ParticipantCount: 1,
		StartsAt:  testClock.Add(1 * time.Hour),
		EndsAt:    testClock.Add(5 * time.Hour),
		PromoCode: "HALF",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4000), r.BasePriceCents)
	assert.Equal(t, int64(0), r.FinalPriceCents)

	confirmed, err := svc.Confirm(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), confirmed.FinalPriceCents)
	assert.Equal(t, uint32(0), store.enrollments[1].RemainingHours)
	assert.Equal(t, int64(0), store.credits[0].RemainingCents, "oldest credit consumed first")
	assert.Equal(t, int64(200), store.credits[1].RemainingCents, "second credit keeps its remainder")
}

func TestFixedPromoFloorsAtZero(t *testing.T) {
	store := newMemStore()
	store.addResource(testBooth())
	store.addPromo(&model.PromoCode{
		Code:          "BIGFIX",
		DiscountType:  model.DiscountFixed,
		DiscountValue: 5000,
		ValidFrom:     testClock.Add(-time.Hour),
		ValidUntil:    testClock.Add(240 * time.Hour),
		MaxUses:       5,
		ApplicableTo:  model.PromoScopeAll,
	})
	svc := newTestService(store, nil, testClock)

	r, err := svc.Create(context.Background(), CreateRequest{
		ResourceID: 1, UserID: 1, ParticipantCount: 1,
		StartsAt:  testClock.Add(1 * time.Hour),
		EndsAt:    testClock.Add(3 * time.Hour),
		PromoCode: "BIGFIX",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), r.FinalPriceCents)
}

func TestCancelTwice(t *testing.T) {
	store := newMemStore()
	store.addResource(testBooth())
	svc := newTestService(store, nil, testClock)
	ctx := context.Background()

	r, err := svc.Create(ctx, CreateRequest{
		ResourceID: 1, UserID: 1, ParticipantCount: 1,
		StartsAt: testClock.Add(1 * time.Hour),
		EndsAt:   testClock.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, r.ID, 1)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, r.ID, 1)
	var serr *InvalidStateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, model.ReservationCancelled, serr.From)
}

func TestCancelAfterCompletion(t *testing.T) {
	store := newMemStore()
	store.addResource(testBooth())
	svc := newTestService(store, nil, testClock)
	ctx := context.Background()

	r, err := svc.Create(ctx, CreateRequest{
		ResourceID: 1, UserID: 1, ParticipantCount: 1,
		StartsAt: testClock.Add(1 * time.Hour),
		EndsAt:   testClock.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, r.ID)
	require.NoError(t, err)

	// The wall clock crosses the end of the window; even though the
	// sweeper has not persisted the transition yet, cancellation must
	// see the derived terminal state.
	svc.now = func() time.Time { return testClock.Add(3 * time.Hour) }
	_, err = svc.Cancel(ctx, r.ID, 1)
	var serr *InvalidStateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, model.ReservationCompleted, serr.From)
}

func TestGetDerivesStatusFromClock(t *testing.T) {
	store := newMemStore()
	store.addResource(testBooth())
	svc := newTestService(store, nil, testClock)
	ctx := context.Background()

	r, err := svc.Create(ctx, CreateRequest{
		ResourceID: 1, UserID: 1, ParticipantCount: 1,
		StartsAt: testClock.Add(1 * time.Hour),
		EndsAt:   testClock.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, r.ID)
	require.NoError(t, err)

	svc.now = func() time.Time { return testClock.Add(90 * time.Minute) }
	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationInProgress, got.Status)

	svc.now = func() time.Time { return testClock.Add(3 * time.Hour) }
	got, err = svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCompleted, got.Status)
}

func TestCheckAvailability(t *testing.T) {
	store := newMemStore()
	store.addResource(testBooth())
	svc := newTestService(store, nil, testClock)
	ctx := context.Background()

	_, err := svc.CheckAvailability(ctx, 1, testClock.Add(time.Hour), testClock.Add(2*time.Hour))
	require.NoError(t, err)

	r, err := svc.Create(ctx, CreateRequest{
		ResourceID: 1, UserID: 1, ParticipantCount: 1,
		StartsAt: testClock.Add(1 * time.Hour),
		EndsAt:   testClock.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	conflictID, err := svc.CheckAvailability(ctx, 1, testClock.Add(90*time.Minute), testClock.Add(3*time.Hour))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, r.ID, conflictID)
}

func TestConfirmNonPending(t *testing.T) {
	store := newMemStore()
	store.addResource(testBooth())
	svc := newTestService(store, nil, testClock)
	ctx := context.Background()

	r, err := svc.Create(ctx, CreateRequest{
		ResourceID: 1, UserID: 1, ParticipantCount: 1,
		StartsAt: testClock.Add(1 * time.Hour),
		EndsAt:   testClock.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, r.ID)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, r.ID)
	var serr *InvalidStateError
	require.ErrorAs(t, err, &serr)
}

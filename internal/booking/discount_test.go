package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

func validPromo() *model.PromoCode {
	return &model.PromoCode{
		Code:          "WELCOME",
		DiscountType:  model.DiscountPercentage,
		DiscountValue: 25,
		ValidFrom:     testClock.Add(-time.Hour),
		ValidUntil:    testClock.Add(time.Hour),
		MaxUses:       10,
		ApplicableTo:  model.PromoScopeAll,
	}
}

func TestValidatePromoCode(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *model.PromoCode)
		amount int64
		reason string
	}{
		{
			name:   "not yet valid",
			mutate: func(p *model.PromoCode) { p.ValidFrom = testClock.Add(time.Minute) },
			amount: 1000,
			reason: PromoReasonNotStarted,
		},
		{
			name:   "expired",
			mutate: func(p *model.PromoCode) { p.ValidUntil = testClock.Add(-time.Minute) },
			amount: 1000,
			reason: PromoReasonExpired,
		},
		{
			name:   "exhausted",
			mutate: func(p *model.PromoCode) { p.UsesSoFar = p.MaxUses },
			amount: 1000,
			reason: PromoReasonExhausted,
		},
		{
			name:   "below minimum order",
			mutate: func(p *model.PromoCode) { p.MinOrderAmountCents = 2000 },
			amount: 1000,
			reason: PromoReasonBelowMinimum,
		},
		{
			name:   "wrong scope",
			mutate: func(p *model.PromoCode) { p.ApplicableTo = model.PromoScopeSubscription },
			amount: 1000,
			reason: PromoReasonWrongType,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPromo()
			tc.mutate(p)
			_, err := ValidatePromoCode(p, tc.amount, model.PromoScopeReservation, testClock)
			var perr *PromoInvalidError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.reason, perr.Reason)
		})
	}
}

func TestValidatePromoCodeDiscounts(t *testing.T) {
	p := validPromo()
	d, err := ValidatePromoCode(p, 1000, model.PromoScopeReservation, testClock)
	require.NoError(t, err)
	assert.Equal(t, int64(250), d)

	// Half-up rounding on odd amounts: 25% of 999 is 249.75.
	d, err = ValidatePromoCode(p, 999, model.PromoScopeReservation, testClock)
	require.NoError(t, err)
	assert.Equal(t, int64(250), d)

	p.DiscountType = model.DiscountFixed
	p.DiscountValue = 1500
	d, err = ValidatePromoCode(p, 1000, model.PromoScopeReservation, testClock)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), d, "fixed discount is capped at the order amount")
}

func TestPlanDiscountsUnknownPromo(t *testing.T) {
	store := newMemStore()
	booth := testBooth()

	err := store.Atomically(context.Background(), booth.ID, func(st Store) error {
		_, err := planDiscounts(context.Background(), st, booth, 1,
			testClock.Add(time.Hour), testClock.Add(2*time.Hour), "NOPE", 1000, testClock)
		return err
	})
	var perr *PromoInvalidError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, PromoReasonUnknown, perr.Reason)
}

func TestPlanDiscountsSubscriptionPartialHours(t *testing.T) {
	store := newMemStore()
	booth := testBooth()
	booth.HourlyRateCents = 1000
	store.addEnrollment(&model.SubscriptionEnrollment{
		ID: 1, UserID: 5, PlanID: 1,
		StartsAt:       testClock.Add(-time.Hour),
		EndsAt:         testClock.Add(240 * time.Hour),
		RemainingHours: 10,
	})

	// 3h booking against 10 remaining hours: only the booked hours are
	// consumed, priced at the hourly rate.
	var b *Breakdown
	err := store.Atomically(context.Background(), booth.ID, func(st Store) error {
		var err error
		b, err = planDiscounts(context.Background(), st, booth, 5,
			testClock.Add(time.Hour), testClock.Add(4*time.Hour), "", 3000, testClock)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), b.SubscriptionHours)
	assert.Equal(t, int64(3000), b.SubscriptionCents)
	assert.Equal(t, int64(0), b.FinalPriceCents)
}

package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coworking-reservation/internal/model"
	"github.com/iliyamo/coworking-reservation/internal/pricing"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func booth() *model.Resource {
	return &model.Resource{
		ID:               1,
		Name:             "Booth B2",
		Type:             model.ResourceBooth,
		Capacity:         2,
		HourlyRateCents:  500,
		DailyRateCents:   3000,
		MonthlyRateCents: 60000,
		Available:        true,
	}
}

func TestQuoteHourly(t *testing.T) {
	res := booth()
	start := day(2).Add(9 * time.Hour)

	got, err := pricing.Quote(res, start, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got)
}

func TestQuoteCeilsStartedHours(t *testing.T) {
	res := booth()
	start := day(2).Add(9 * time.Hour)

	// 90 minutes bills as 2 hours.
	got, err := pricing.Quote(res, start, start.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got)
}

func TestQuoteDailyCapBeatsHourly(t *testing.T) {
	res := booth()
	start := day(2).Add(9 * time.Hour)

	// 8h at 500/h would be 4000; the 3000 daily rate caps it.
	got, err := pricing.Quote(res, start, start.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3000), got)
}

func TestQuoteMixedTiers(t *testing.T) {
	res := booth()
	start := day(2)

	// 2 full days + 3 hours: 2*3000 + 3*500.
	got, err := pricing.Quote(res, start, start.Add(51*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(7500), got)
}

func TestQuoteFullDayWithoutDailyRate(t *testing.T) {
	res := booth()
	res.DailyRateCents = 0
	start := day(2)

	got, err := pricing.Quote(res, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(12000), got)
}

func TestQuoteMonthlyExact(t *testing.T) {
	res := booth()

	got, err := pricing.Quote(res, day(1), day(1).AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(60000), got)
}

func TestQuoteMonthlyProrationRoundsHalfUp(t *testing.T) {
	res := booth()

	// One full month (March) plus 10 days into April (30 days):
	// 60000 + round(60000*10/30) = 60000 + 20000.
	got, err := pricing.Quote(res, day(1), day(1).AddDate(0, 1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(80000), got)

	// 7 of 30 days: 60000*7/30 = 14000 exactly; 7 of 31 days in May
	// would be 13548.39 -> 13548 after half-up rounding.
	res.MonthlyRateCents = 59999
	got, err = pricing.Quote(res, day(1), day(1).AddDate(0, 1, 7))
	require.NoError(t, err)
	// full month 59999 + round(59999*7/30) = 59999 + 14000
	assert.Equal(t, int64(73999), got)
}

func TestQuoteBelowMonthlyThresholdIgnoresMonthlyRate(t *testing.T) {
	res := booth()
	start := day(1)

	// 29 days stay on the per-day path.
	got, err := pricing.Quote(res, start, start.AddDate(0, 0, 29))
	require.NoError(t, err)
	assert.Equal(t, int64(29*3000), got)
}

func TestQuoteInvalidInterval(t *testing.T) {
	res := booth()
	start := day(2)

	_, err := pricing.Quote(res, start, start)
	assert.Error(t, err)
}

func TestQuoteNoApplicableRate(t *testing.T) {
	res := booth()
	res.HourlyRateCents = 0
	res.DailyRateCents = 0
	res.MonthlyRateCents = 0
	start := day(2)

	_, err := pricing.Quote(res, start, start.Add(2*time.Hour))
	assert.ErrorIs(t, err, pricing.ErrNoApplicableRate)
}

func TestCeilHours(t *testing.T) {
	assert.Equal(t, int64(1), pricing.CeilHours(time.Hour))
	assert.Equal(t, int64(2), pricing.CeilHours(61*time.Minute))
	assert.Equal(t, int64(0), pricing.CeilHours(0))
}

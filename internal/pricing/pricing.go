// Package pricing converts a (resource, interval) pair into a base
// price.  All amounts are integer cents; durations are half-open
// [start, end) windows in UTC.  Proration rounds half-up, it is not
// biased in the payer's favour.
package pricing

import (
	"errors"
	"time"

	"github.com/iliyamo/coworking-reservation/internal/model"
)

// MonthlyThreshold is the duration at which a booking is priced on the
// monthly tier when the resource offers one.
const MonthlyThreshold = 30 * 24 * time.Hour

// ErrNoApplicableRate is returned when the resource offers no tier
// that can price the requested duration (e.g. all rates are zero).
var ErrNoApplicableRate = errors.New("no applicable rate for resource")

// Quote computes the base price in cents for reserving the resource
// over [start, end).  Tier selection:
//
//   - durations of at least MonthlyThreshold use the monthly rate when
//     offered, with partial months prorated by calendar days;
//   - anything shorter is summed day by day: each full day costs the
//     cheaper of the daily rate and 24 hourly units, and the remainder
//     costs ceil(hours) hourly units capped at the daily rate.
//
// The per-day cap means short bookings also benefit from the daily
// rate: 8 hours at 500/h with a 3000/day rate quotes 3000.
func Quote(res *model.Resource, start, end time.Time) (int64, error) {
	if !start.Before(end) {
		return 0, errors.New("interval start must precede end")
	}
	d := end.Sub(start)
	if res.MonthlyRateCents > 0 && d >= MonthlyThreshold {
		return monthlyQuote(res, start, end), nil
	}
	if res.HourlyRateCents == 0 && res.DailyRateCents == 0 {
		return 0, ErrNoApplicableRate
	}
	fullDays := int64(d / (24 * time.Hour))
	rem := d - time.Duration(fullDays)*24*time.Hour
	total := fullDays * dayCost(res)
	if rem > 0 {
		total += partialDayCost(res, rem)
	}
	return total, nil
}

// CeilHours returns the number of started hours in d.  A 90 minute
// window bills as 2 hours.
func CeilHours(d time.Duration) int64 {
	h := int64(d / time.Hour)
	if d%time.Hour != 0 {
		h++
	}
	return h
}

// dayCost prices one full day: the daily rate when offered and
// cheaper, otherwise 24 hourly units.
func dayCost(res *model.Resource) int64 {
	hourly := res.HourlyRateCents * 24
	if res.DailyRateCents > 0 && (res.HourlyRateCents == 0 || res.DailyRateCents < hourly) {
		return res.DailyRateCents
	}
	return hourly
}

// partialDayCost prices a sub-day remainder at the hourly rate, capped
// at the daily rate when one is offered.
func partialDayCost(res *model.Resource, rem time.Duration) int64 {
	if res.HourlyRateCents == 0 {
		// Only a daily tier exists; a started day bills as a day.
		return res.DailyRateCents
	}
	cost := res.HourlyRateCents * CeilHours(rem)
	if res.DailyRateCents > 0 && cost > res.DailyRateCents {
		cost = res.DailyRateCents
	}
	return cost
}

// monthlyQuote walks calendar months from start, charging the full
// monthly rate per complete month and prorating the remainder against
// the number of days in the month the remainder falls in.
func monthlyQuote(res *model.Resource, start, end time.Time) int64 {
	var total int64
	cursor := start
	for {
		next := cursor.AddDate(0, 1, 0)
		if next.After(end) {
			break
		}
		total += res.MonthlyRateCents
		cursor = next
	}
	if cursor.Before(end) {
		rem := end.Sub(cursor)
		remDays := int64(rem / (24 * time.Hour))
		if rem%(24*time.Hour) != 0 {
			remDays++
		}
		total += prorate(res.MonthlyRateCents, remDays, daysInMonth(cursor))
	}
	return total
}

// prorate returns rate*used/total with half-up rounding.
func prorate(rate, used, total int64) int64 {
	if total == 0 {
		return 0
	}
	return (rate*used + total/2) / total
}

// daysInMonth returns the number of calendar days in t's month.
func daysInMonth(t time.Time) int64 {
	y, m, _ := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return int64(first.AddDate(0, 1, 0).Sub(first) / (24 * time.Hour))
}

package fundnav

import (
	"fmt"
	"slices"
)

// MaxCalendarGap is the largest number of calendar days allowed between a
// boundary of the replay range and the nearest benchmark trading day.
// Beyond it the benchmark series is considered not to cover the range.
const MaxCalendarGap = 7

// Calendar is the sequence of calendar days of a replay, with the trading
// days of the benchmark security.
type Calendar struct {
	rng     Range
	days    []Date
	trading map[Date]struct{}
}

// BenchmarkRange returns the range of benchmark days needed to build the
// calendar of rng: rng extended by MaxCalendarGap days before its start.
func BenchmarkRange(rng Range) Range {
	return Range{From: rng.From.Add(-MaxCalendarGap), To: rng.To}
}

// NewCalendar builds the calendar of rng from a benchmark series fetched
// over BenchmarkRange(rng). Trading days are the benchmark days in rng.
//
// The series covers rng when the latest benchmark day on or before each
// boundary is at most MaxCalendarGap days away from it. A series starting
// inside rng also covers its start when its first day is close enough.
func NewCalendar(rng Range, benchmark []Date) (*Calendar, error) {
	if rng.From.IsZero() || rng.To.IsZero() || rng.To.Before(rng.From) {
		return nil, &Error{Kind: ErrConfiguration, Err: fmt.Errorf("invalid replay range %s", rng)}
	}
	if len(benchmark) == 0 {
		return nil, dataGapf(rng.From, "", "benchmark has no trading day up to %s", rng.To)
	}
	series := slices.SortedFunc(slices.Values(benchmark), Date.Compare)
	c := &Calendar{
		rng:     rng,
		days:    slices.Collect(rng.Days()),
		trading: make(map[Date]struct{}),
	}
	for _, d := range series {
		if rng.Contains(d) {
			c.trading[d] = struct{}{}
		}
	}

	if !coversStart(series, rng.From) {
		return nil, dataGapf(rng.From, "", "benchmark starts on %s, it does not cover %s", series[0], rng)
	}
	if last, ok := latestOnOrBefore(series, rng.To); !ok || last.DaysUntil(rng.To) > MaxCalendarGap {
		return nil, dataGapf(rng.To, "", "benchmark ends on %s, it does not cover %s", series[len(series)-1], rng)
	}
	return c, nil
}

// coversStart reports whether the sorted series has a day at most
// MaxCalendarGap days before or after from.
func coversStart(series []Date, from Date) bool {
	i, found := slices.BinarySearchFunc(series, from, Date.Compare)
	if found {
		return true
	}
	if i > 0 && series[i-1].DaysUntil(from) <= MaxCalendarGap {
		return true
	}
	return i < len(series) && from.DaysUntil(series[i]) <= MaxCalendarGap
}

// latestOnOrBefore returns the last day of the sorted series not after d.
func latestOnOrBefore(series []Date, d Date) (Date, bool) {
	i, found := slices.BinarySearchFunc(series, d, Date.Compare)
	if found {
		return series[i], true
	}
	if i == 0 {
		return Date{}, false
	}
	return series[i-1], true
}

// Range returns the range of the calendar.
func (c *Calendar) Range() Range { return c.rng }

// Days returns every calendar day of the range in ascending order.
func (c *Calendar) Days() []Date { return c.days }

// Len returns the number of calendar days.
func (c *Calendar) Len() int { return len(c.days) }

// IsTradingDay reports whether the benchmark traded on d.
func (c *Calendar) IsTradingDay(d Date) bool {
	_, ok := c.trading[d]
	return ok
}

// TradingDays returns the trading days in ascending order.
func (c *Calendar) TradingDays() []Date {
	days := make([]Date, 0, len(c.trading))
	for _, d := range c.days {
		if c.IsTradingDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// Previous returns the calendar day before d, and false if d is the first
// day of the range or outside of it.
func (c *Calendar) Previous(d Date) (Date, bool) {
	if !c.rng.Contains(d) || d == c.rng.From {
		return Date{}, false
	}
	return d.Add(-1), true
}

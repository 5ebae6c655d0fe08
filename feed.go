package fundnav

import (
	"context"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// PriceFeed is a source of end-of-day market data.
type PriceFeed interface {
	// TradingDays returns the days the benchmark security traded in rng.
	TradingDays(ctx context.Context, benchmark string, rng Range) ([]Date, error)
	// Closes returns the closing prices of the tickers over rng.
	Closes(ctx context.Context, tickers []string, rng Range) (*Prices, error)
}

// history stores a chronological series of values with unique dates.
type history struct {
	days   []Date
	values []decimal.Decimal
}

// Append adds a point to the history, an existing value at that date is overwritten.
func (h *history) Append(on Date, v decimal.Decimal) {
	i, found := slices.BinarySearchFunc(h.days, on, Date.Compare)
	if found {
		h.values[i] = v
		return
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, v)
}

// Get returns the value at day.
func (h *history) Get(day Date) (decimal.Decimal, bool) {
	i, found := slices.BinarySearchFunc(h.days, day, Date.Compare)
	if !found {
		return decimal.Decimal{}, false
	}
	return h.values[i], true
}

// ValueAsOf returns the value on day, or the most recent value before it.
func (h *history) ValueAsOf(day Date) (Date, decimal.Decimal, bool) {
	i, found := slices.BinarySearchFunc(h.days, day, Date.Compare)
	if found {
		return h.days[i], h.values[i], true
	}
	if i == 0 {
		return Date{}, decimal.Decimal{}, false // No date on or before the given day.
	}
	return h.days[i-1], h.values[i-1], true
}

// Prices is a table of closing prices, by ticker and day.
type Prices struct {
	closes map[string]*history
}

// NewPrices creates an empty price table.
func NewPrices() *Prices {
	return &Prices{closes: make(map[string]*history)}
}

// Set records the close of ticker on a day.
func (p *Prices) Set(ticker string, on Date, close decimal.Decimal) {
	h, ok := p.closes[ticker]
	if !ok {
		h = new(history)
		p.closes[ticker] = h
	}
	h.Append(on, close)
}

// Close returns the close of ticker on that exact day.
func (p *Prices) Close(ticker string, on Date) (decimal.Decimal, bool) {
	h, ok := p.closes[ticker]
	if !ok {
		return decimal.Decimal{}, false
	}
	return h.Get(on)
}

// LatestAsOf returns the most recent close of ticker on or before a day, and
// the day of that close.
func (p *Prices) LatestAsOf(ticker string, on Date) (Date, decimal.Decimal, bool) {
	h, ok := p.closes[ticker]
	if !ok {
		return Date{}, decimal.Decimal{}, false
	}
	return h.ValueAsOf(on)
}

// Tickers returns the tickers of the table, sorted.
func (p *Prices) Tickers() []string { return slices.Sorted(maps.Keys(p.closes)) }

// Len returns the number of closes of ticker.
func (p *Prices) Len(ticker string) int {
	if h, ok := p.closes[ticker]; ok {
		return len(h.days)
	}
	return 0
}

// Merge copies every close of q into p.
func (p *Prices) Merge(q *Prices) {
	for ticker, h := range q.closes {
		for i, on := range h.days {
			p.Set(ticker, on, h.values[i])
		}
	}
}

package fundnav

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// fakeFeed serves fixed market data. Without explicit trading days, every
// weekday is a trading day.
type fakeFeed struct {
	days   []Date
	prices *Prices
	err    error
}

func (f *fakeFeed) TradingDays(_ context.Context, _ string, rng Range) ([]Date, error) {
	if f.err != nil {
		return nil, f.err
	}
	var days []Date
	if f.days == nil {
		for d := range rng.Days() {
			if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
				days = append(days, d)
			}
		}
		return days, nil
	}
	for _, d := range f.days {
		if rng.Contains(d) {
			days = append(days, d)
		}
	}
	return days, nil
}

func (f *fakeFeed) Closes(_ context.Context, _ []string, _ Range) (*Prices, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.prices == nil {
		return NewPrices(), nil
	}
	return f.prices, nil
}

// closes builds a price table from "ticker date close" lines.
func closes(t *testing.T, lines ...string) *Prices {
	t.Helper()
	p := NewPrices()
	for _, l := range lines {
		fields := strings.Fields(l)
		if len(fields) != 3 {
			t.Fatalf("invalid close line %q", l)
		}
		p.Set(fields[0], MustParse(fields[1]), decimal.RequireFromString(fields[2]))
	}
	return p
}

// flatCloses sets the same close for ticker on every day of rng.
func flatCloses(p *Prices, ticker string, rng Range, close float64) *Prices {
	for d := range rng.Days() {
		p.Set(ticker, d, decimal.NewFromFloat(close))
	}
	return p
}

// ledger decodes a ledger from JSONL lines.
func ledger(t *testing.T, jsonl string) *Ledger {
	t.Helper()
	l, err := DecodeLedger(strings.NewReader(jsonl))
	if err != nil {
		t.Fatalf("DecodeLedger() unexpected error: %v", err)
	}
	l.SetName("test")
	return l
}

// replay runs the engine on a ledger up to asOf.
func replay(t *testing.T, feed PriceFeed, l *Ledger, asOf string) (*Result, error) {
	t.Helper()
	e, err := NewEngine(feed, "INDEX")
	if err != nil {
		t.Fatalf("NewEngine() unexpected error: %v", err)
	}
	return e.Replay(context.Background(), l, MustParse(asOf))
}

// mustReplay is like replay but fails the test on error.
func mustReplay(t *testing.T, feed PriceFeed, l *Ledger, asOf string) *Result {
	t.Helper()
	r, err := replay(t, feed, l, asOf)
	if err != nil {
		t.Fatalf("Replay() unexpected error: %v", err)
	}
	return r
}

// day returns the index of a date in the result.
func day(t *testing.T, r *Result, on string) int {
	t.Helper()
	d := MustParse(on)
	for i, s := range r.States {
		if s.On == d {
			return i
		}
	}
	t.Fatalf("%s is not a day of the replay", on)
	return -1
}

// checkDecimal fails if got is not the decimal value of want.
func checkDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

// checkKind fails if err is not of the given kind.
func checkKind(t *testing.T, err error, kind error) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("got no error, want %v", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("got error %v, want %v", err, kind)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("error %v is not an *Error", err)
	}
	return e
}

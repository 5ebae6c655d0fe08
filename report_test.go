package fundnav

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestStatistics(t *testing.T) {
	s := statistics([]float64{100, 110, 99, 120})
	if s.TradingDays != 4 {
		t.Errorf("TradingDays = %d, want 4", s.TradingDays)
	}
	if math.Abs(s.Return-0.2) > 1e-9 {
		t.Errorf("Return = %v, want 0.2", s.Return)
	}
	if math.Abs(s.MaxDrawdown-0.1) > 1e-9 {
		t.Errorf("MaxDrawdown = %v, want 0.1", s.MaxDrawdown)
	}
	if s.Volatility <= 0 {
		t.Errorf("Volatility = %v, want positive", s.Volatility)
	}

	if got := statistics([]float64{1000}); got.Return != 0 || got.Volatility != 0 || got.TradingDays != 1 {
		t.Errorf("statistics() of a single point = %+v", got)
	}
}

func TestNewReport(t *testing.T) {
	l := ledger(t, `
{"command":"init","date":"2025-01-06","currency":"EUR","cash":100000}
{"command":"buy","date":"2025-01-06","ticker":"AAA","amount":100,"price":50}
{"command":"sell","date":"2025-01-08","ticker":"AAA","amount":40,"price":60}
{"command":"transfer","date":"2025-01-20","amount":10}
`)
	prices := flatCloses(NewPrices(), "AAA", NewRange(MustParse("2024-12-30"), MustParse("2025-01-12")), 50)
	prices.Set("AAA", MustParse("2025-01-07"), decimal.NewFromInt(52))
	r := NewReport(mustReplay(t, &fakeFeed{prices: prices}, l, "2025-01-12"))

	if r.Name != "test" || r.Currency != "EUR" {
		t.Errorf("report of %q in %q", r.Name, r.Currency)
	}
	if len(r.Records) != 2 {
		t.Errorf("got %d records, want the 2 replayed", len(r.Records))
	}
	if len(r.Daily) != 7 {
		t.Errorf("got %d days, want 7", len(r.Daily))
	}
	if r.Statistics.Days != 7 || r.Statistics.TradingDays != 5 {
		t.Errorf("statistics over %d days, %d trading days, want 7 and 5", r.Statistics.Days, r.Statistics.TradingDays)
	}
	if len(r.Holdings) != 1 {
		t.Fatalf("got %d holdings, want 1", len(r.Holdings))
	}
	checkDecimal(t, "weight", r.Holdings[0].Weight.Round(6), "0.02988")
	checkDecimal(t, "cash", r.Cash.Decimal(), "97400")
	checkDecimal(t, "total", r.Total.Decimal(), "100400")

	// equity history of a day before the sell.
	d := r.Daily[1]
	if d.On != MustParse("2025-01-07") || len(d.Positions) != 1 {
		t.Fatalf("day %s has positions %v, want AAA only", d.On, d.Positions)
	}
	p := d.Positions[0]
	if p.Ticker != "AAA" {
		t.Errorf("position ticker = %q, want AAA", p.Ticker)
	}
	checkDecimal(t, "shares on 2025-01-07", p.Shares.Decimal(), "100")
	checkDecimal(t, "price on 2025-01-07", p.Price.Decimal(), "52")
	checkDecimal(t, "value on 2025-01-07", p.Value.Decimal(), "5200")
	checkDecimal(t, "weight on 2025-01-07", p.Weight.Round(6), "0.051896")

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	for _, want := range []string{`"name":"test"`, `"from":"2025-01-06"`, `"to":"2025-01-12"`, `"trading_days":5`, `"kind":"purchase"`, `"positions":[{"ticker":"AAA"`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("report JSON does not contain %s:\n%s", want, b)
		}
	}
	if strings.Contains(string(b), "commentary") {
		t.Error("empty commentary is written")
	}
}

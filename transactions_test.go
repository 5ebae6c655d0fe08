package fundnav

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBuy_Apply(t *testing.T) {
	on := MustParse("2025-01-06")
	s := NewState(on, M(10000, "EUR"))

	flow, err := NewBuy(on, "AAA", Q(100), M(50, ""), decimal.RequireFromString("0.01")).apply(s)
	if err != nil {
		t.Fatal(err)
	}
	checkDecimal(t, "cash", s.Cash.Decimal(), "4950")
	checkDecimal(t, "flow", flow.Amount.Decimal(), "-5050")
	h, _ := s.Holding("AAA")
	checkDecimal(t, "average excludes taxes", h.Average.Decimal(), "50")

	if _, err := NewBuy(on, "AAA", Q(100), M(80, ""), decimal.Zero).apply(s); err != nil {
		t.Fatal(err)
	}
	h, _ = s.Holding("AAA")
	checkDecimal(t, "shares", h.Shares.Decimal(), "200")
	checkDecimal(t, "weighted average", h.Average.Decimal(), "65")
	checkDecimal(t, "cost", h.Cost().Decimal(), "13000")
}

// TestTrades_AverageBounds applies a run of trades and checks after every
// buy that the average price lies between the previous average and the buy
// price, and after every step that no holding has negative shares.
func TestTrades_AverageBounds(t *testing.T) {
	on := MustParse("2025-01-06")
	tax := decimal.RequireFromString("0.005")
	buy := func(ticker string, shares int, price float64) Transaction {
		return NewBuy(on, ticker, Q(shares), M(price, ""), tax)
	}
	sell := func(ticker string, shares int, price float64) Transaction {
		return NewSell(on, ticker, Q(shares), M(price, ""), tax)
	}
	steps := []struct {
		tx      Transaction
		wantErr bool
	}{
		{tx: buy("AAA", 10, 20)},
		{tx: buy("AAA", 5, 35.5)},
		{tx: buy("BBB", 3, 120)},
		{tx: sell("AAA", 7, 40)},
		{tx: buy("AAA", 100, 1.25)},
		{tx: buy("AAA", 1, 1000)},
		{tx: sell("BBB", 4, 130), wantErr: true},
		{tx: sell("BBB", 3, 90)},
		{tx: buy("BBB", 2, 95)},
		{tx: buy("AAA", 33, 17.3)},
		{tx: sell("AAA", 142, 18)},
		{tx: buy("AAA", 1, 19)},
		{tx: NewTransfer(on, M(-500, ""))},
		{tx: buy("BBB", 7, 95)},
	}

	s := NewState(on, M(100000, "EUR"))
	for i, step := range steps {
		var before Holding
		var held bool
		b, isBuy := step.tx.(Buy)
		if isBuy {
			before, held = s.Holding(b.Security)
		}

		_, err := step.tx.apply(s)
		if (err != nil) != step.wantErr {
			t.Fatalf("step %d %s: error = %v, want error %v", i, describe(step.tx), err, step.wantErr)
		}

		for h := range s.Holdings() {
			if h.Shares.IsNegative() {
				t.Errorf("step %d: %s has %s shares", i, h.Ticker, h.Shares)
			}
		}
		if !isBuy {
			continue
		}
		after, _ := s.Holding(b.Security)
		if !held {
			checkDecimal(t, "average of a new holding", after.Average.Decimal(), b.Price.Decimal().String())
			continue
		}
		lo, hi := before.Average.Decimal(), b.Price.Decimal()
		if lo.GreaterThan(hi) {
			lo, hi = hi, lo
		}
		if avg := after.Average.Decimal(); avg.LessThan(lo) || avg.GreaterThan(hi) {
			t.Errorf("step %d: average %s is outside [%s, %s]", i, avg, lo, hi)
		}
	}
}

func TestSell_Apply(t *testing.T) {
	on := MustParse("2025-01-06")
	s := NewState(on, M(0, "EUR"), Holding{Ticker: "AAA", Shares: Q(10), Average: M(20, "")})

	flow, err := NewSell(on, "AAA", Q(4), M(25, ""), decimal.RequireFromString("0.02")).apply(s)
	if err != nil {
		t.Fatal(err)
	}
	checkDecimal(t, "proceeds", flow.Amount.Decimal(), "98")
	checkDecimal(t, "cash", s.Cash.Decimal(), "98")
	h, _ := s.Holding("AAA")
	checkDecimal(t, "average is unchanged", h.Average.Decimal(), "20")

	if _, err := NewSell(on, "AAA", Q(6), M(25, ""), decimal.Zero).apply(s); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Holding("AAA"); ok {
		t.Error("a position sold out is still held")
	}

	_, err = NewSell(on, "AAA", Q(1), M(25, ""), decimal.Zero).apply(s)
	checkKind(t, err, ErrLedger)
}

func TestTransfer_Apply(t *testing.T) {
	on := MustParse("2025-01-06")
	s := NewState(on, M(100, "EUR"))
	flow, err := NewTransfer(on, M(-30, "")).apply(s)
	if err != nil {
		t.Fatal(err)
	}
	checkDecimal(t, "cash", s.Cash.Decimal(), "70")
	if flow.Kind != FlowTransfer || flow.Security != "" {
		t.Errorf("transfer flow = %+v", flow)
	}
}

func TestError(t *testing.T) {
	err := ledgerErrorf(MustParse("2025-01-07"), "AAA", NewSell(MustParse("2025-01-07"), "AAA", Q(1), M(2, ""), decimal.Zero), "not held")
	want := `ledger inconsistency on 2025-01-07 for AAA in {"command":"sell","date":"2025-01-07","ticker":"AAA","amount":1,"price":2}: not held`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	checkKind(t, err, ErrLedger)
}

func TestMoney(t *testing.T) {
	if got, want := M(1234.5, "EUR").String(), "€1,234.50"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := M(12, "").In("USD").String(), "$12.00"; got != want {
		t.Errorf("In().String() = %q, want %q", got, want)
	}
	if got := M(12, "USD").In("EUR").Currency(); got != "USD" {
		t.Errorf("In() changed a currency to %q", got)
	}
	if got := M(0, "USD").SignedString(); got != "-" {
		t.Errorf("SignedString() of zero = %q, want -", got)
	}
	if got := M(1, "").Add(M(2, "EUR")).Currency(); got != "EUR" {
		t.Errorf("weak currency is not adopted: %q", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("adding EUR and USD should panic")
		}
	}()
	M(1, "USD").Add(M(2, "EUR"))
}

func TestPercent(t *testing.T) {
	if got, want := Pct(0.0123).String(), "1.23%"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := Pct(0.0123).SignedString(), "+1.23%"; got != want {
		t.Errorf("SignedString() = %q, want %q", got, want)
	}
	if got := Pct(-0.00001).SignedString(); got != "-" {
		t.Errorf("SignedString() of almost zero = %q, want -", got)
	}
}

func TestStockSplit_Split(t *testing.T) {
	on := MustParse("2025-01-08")
	h := Holding{Ticker: "AAA", Shares: Q(100), Average: M(20, "")}
	tests := []struct {
		ratio   string
		shares  string
		average string
	}{
		{"0.5", "200", "10"}, // 2 for 1
		{"2", "50", "40"},    // 1 for 2
		{"0.25", "400", "5"}, // 4 for 1
	}
	for _, tt := range tests {
		a := NewStockSplit("AAA", on.Add(-1), on, decimal.RequireFromString(tt.ratio))
		got := a.split(h)
		checkDecimal(t, "shares after ratio "+tt.ratio, got.Shares.Decimal(), tt.shares)
		checkDecimal(t, "average after ratio "+tt.ratio, got.Average.Decimal(), tt.average)
	}
}

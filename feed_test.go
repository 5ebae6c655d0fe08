package fundnav

import (
	"slices"
	"testing"
)

func TestPrices(t *testing.T) {
	p := closes(t, "AAA 2025-01-06 10", "AAA 2025-01-08 12")
	q := closes(t, "BBB 2025-01-07 20", "AAA 2025-01-07 11")
	p.Merge(q)

	if got, want := p.Tickers(), []string{"AAA", "BBB"}; !slices.Equal(got, want) {
		t.Errorf("Tickers() = %v, want %v", got, want)
	}
	if got := p.Len("AAA"); got != 3 {
		t.Errorf("Len(AAA) = %d, want 3", got)
	}
	if got := p.Len("CCC"); got != 0 {
		t.Errorf("Len(CCC) = %d, want 0", got)
	}
	if c, ok := p.Close("AAA", MustParse("2025-01-07")); !ok {
		t.Error("Close(AAA, 2025-01-07) is missing after Merge")
	} else {
		checkDecimal(t, "merged close", c, "11")
	}
	if _, ok := p.Close("BBB", MustParse("2025-01-08")); ok {
		t.Error("Close(BBB, 2025-01-08) exists")
	}

	on, c, ok := p.LatestAsOf("BBB", MustParse("2025-01-12"))
	if !ok || on != MustParse("2025-01-07") {
		t.Fatalf("LatestAsOf(BBB, 2025-01-12) = %s, %v", on, ok)
	}
	checkDecimal(t, "latest close", c, "20")
	if _, _, ok := p.LatestAsOf("AAA", MustParse("2025-01-05")); ok {
		t.Error("LatestAsOf() before the first close exists")
	}
}

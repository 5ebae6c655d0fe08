package renderer

import (
	"fmt"

	"github.com/etnz/fundnav"
)

// Record renders a ledger record to a one line sentence.
func Record(rec fundnav.Record, cur string) string {
	switch v := rec.(type) {
	case fundnav.Buy:
		return fmt.Sprintf("%s: bought %s %s at %s", v.Date, v.Amount, v.Security, v.Price.In(cur))
	case fundnav.Sell:
		return fmt.Sprintf("%s: sold %s %s at %s", v.Date, v.Amount, v.Security, v.Price.In(cur))
	case fundnav.Transfer:
		if v.Amount.IsNegative() {
			return fmt.Sprintf("%s: withdrew %s", v.Date, v.Amount.Neg().In(cur))
		}
		return fmt.Sprintf("%s: deposited %s", v.Date, v.Amount.In(cur))
	case fundnav.Dividend:
		return fmt.Sprintf("%s: dividend of %s per %s share held on %s", v.Payment, v.Price.In(cur), v.Ticker, v.Cum)
	case fundnav.StockSplit:
		return fmt.Sprintf("%s: %s split, %s old share(s) per new share", v.Ex, v.Ticker, v.Ratio)
	case fundnav.StockDividend:
		return fmt.Sprintf("%s: %s stock dividend, one bonus share per %s held", v.Ex, v.Ticker, v.Ratio)
	case fundnav.Init:
		return fmt.Sprintf("%s: opened with %s", v.Date, v.Cash)
	case fundnav.Hold:
		return fmt.Sprintf("holding %s %s at %s", v.Shares, v.Security, v.Price.In(cur))
	default:
		return string(rec.What())
	}
}

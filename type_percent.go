package fundnav

import "fmt"

// Percent is a percentage, 12.5 means 12.5%.
type Percent float64

// Pct converts a fraction into a Percent.
func Pct(fraction float64) Percent { return Percent(fraction * 100) }

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

// SignedString returns the percentage with an explicit sign, "-" when it rounds to zero.
func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", float64(p))
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return res
}

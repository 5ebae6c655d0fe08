package fundnav

import "slices"

// Position is a holding valued at a closing price.
type Position struct {
	Ticker  string
	Shares  Quantity
	Average Money
	Price   Money
	Value   Money // Value is Shares x Price.
}

// EquitySnapshot is the valuation of the holdings of a day.
type EquitySnapshot struct {
	On        Date
	Positions []Position
}

// MarketValue returns the sum of the positions value.
func (e EquitySnapshot) MarketValue() Money {
	var total Money
	for _, p := range e.Positions {
		total = total.Add(p.Value)
	}
	return total
}

// Position returns the position in ticker, if any.
func (e EquitySnapshot) Position(ticker string) (Position, bool) {
	for _, p := range e.Positions {
		if p.Ticker == ticker {
			return p, true
		}
	}
	return Position{}, false
}

// adjustForSplits returns a copy of states where every holding dated
// strictly before the ex date of a split is expressed in post-split shares,
// so that it can be valued at split-adjusted closes. states is not modified.
func adjustForSplits(states []*State, splits []StockSplit) []*State {
	adjusted := make([]*State, len(states))
	for i, s := range states {
		adjusted[i] = s.clone(s.On)
	}
	for _, split := range splits {
		for _, s := range adjusted {
			if !s.On.Before(split.Ex) {
				break
			}
			if h, ok := s.Holding(split.Ticker); ok {
				s.put(split.split(h))
			}
		}
	}
	return adjusted
}

// valuate values every day of the calendar.
//
// On a trading day every holding is priced at that day's close. A
// non-trading day repeats the previous snapshot, only the cash moves. On a
// non-trading first day holdings are priced at the latest close before it.
// The total of a day is its market value plus its own cash.
func valuate(cal *Calendar, adjusted []*State, prices *Prices) ([]EquitySnapshot, []Money, error) {
	equity := make([]EquitySnapshot, len(adjusted))
	totals := make([]Money, len(adjusted))
	for i, s := range adjusted {
		switch {
		case cal.IsTradingDay(s.On):
			snap := EquitySnapshot{On: s.On, Positions: make([]Position, 0, s.Len())}
			for h := range s.Holdings() {
				close, ok := prices.Close(h.Ticker, s.On)
				if !ok {
					return nil, nil, dataGapf(s.On, h.Ticker, "no close for %s on trading day %s", h.Ticker, s.On)
				}
				snap.Positions = append(snap.Positions, position(h, M(close, s.Cash.Currency())))
			}
			equity[i] = snap
		case i > 0:
			equity[i] = EquitySnapshot{On: s.On, Positions: slices.Clone(equity[i-1].Positions)}
		default:
			snap := EquitySnapshot{On: s.On, Positions: make([]Position, 0, s.Len())}
			for h := range s.Holdings() {
				_, close, ok := prices.LatestAsOf(h.Ticker, s.On)
				if !ok {
					return nil, nil, dataGapf(s.On, h.Ticker, "no close for %s on or before %s", h.Ticker, s.On)
				}
				snap.Positions = append(snap.Positions, position(h, M(close, s.Cash.Currency())))
			}
			equity[i] = snap
		}
		totals[i] = equity[i].MarketValue().Add(s.Cash)
	}
	return equity, totals, nil
}

func position(h Holding, price Money) Position {
	return Position{
		Ticker:  h.Ticker,
		Shares:  h.Shares,
		Average: h.Average,
		Price:   price,
		Value:   price.Mul(h.Shares),
	}
}

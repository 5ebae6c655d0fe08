package fundnav

import "errors"

// InitialNAV is the value of one unit on the first day of a replay.
const InitialNAV = 1000

// NAVPoint is the unit accounting of a day.
type NAVPoint struct {
	On       Date
	Total    Money    // Total is the portfolio value: market value plus cash.
	Transfer Money    // Transfer is the net external cash movement of the day.
	Units    Quantity // Units is the number of units outstanding at the end of the day.
	NAV      Money    // NAV is the value of one unit: Total / Units.
}

// MarshalJSON implements the json.Marshaler interface for NAVPoint.
func (p NAVPoint) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", p.On)
	w.Append("total", p.Total)
	if !p.Transfer.IsZero() {
		w.Append("transfer", p.Transfer)
	}
	w.Append("units", p.Units)
	w.Append("nav", p.NAV)
	return w.MarshalJSON()
}

// computeNAV runs the unit accounting over the daily totals.
//
// Units are issued at InitialNAV on the first day. Then a transfer creates
// or destroys units at the previous day NAV, so that external cash movements
// do not change the NAV.
func computeNAV(days []Date, totals []Money, flows []CashFlow) ([]NAVPoint, error) {
	if len(days) != len(totals) {
		return nil, &Error{Kind: ErrConfiguration, Err: errors.New("days and totals are not aligned")}
	}
	initial := M(InitialNAV, "")
	moved := transfers(flows)
	points := make([]NAVPoint, len(days))
	for i, on := range days {
		p := NAVPoint{On: on, Total: totals[i], Transfer: moved[on]}
		if i == 0 {
			p.Units = totals[i].DivPrice(initial)
		} else {
			prev := points[i-1]
			if prev.NAV.IsZero() {
				return nil, &Error{Kind: ErrArithmetic, Date: on, Err: errors.New("previous NAV is zero, cannot price units")}
			}
			p.Units = prev.Units.Add(p.Transfer.DivPrice(prev.NAV))
		}
		if p.Units.IsZero() {
			return nil, &Error{Kind: ErrArithmetic, Date: on, Err: errors.New("no unit outstanding, NAV is undefined")}
		}
		p.NAV = totals[i].Div(p.Units)
		points[i] = p
	}
	return points, nil
}

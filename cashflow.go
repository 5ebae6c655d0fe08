package fundnav

// FlowKind classifies cash flows.
type FlowKind string

const (
	FlowTransfer FlowKind = "transfer" // external deposit or withdrawal
	FlowPurchase FlowKind = "purchase" // buy (negative) or sell (positive)
	FlowDividend FlowKind = "dividend"
)

// CashFlow is a change of cash caused by a single record.
type CashFlow struct {
	Date     Date
	Amount   Money
	Kind     FlowKind
	Security string // Security is empty for transfers.
}

// MarshalJSON implements the json.Marshaler interface for CashFlow.
func (f CashFlow) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", f.Date)
	w.Append("kind", f.Kind)
	w.Optional("ticker", f.Security)
	w.Append("amount", f.Amount)
	return w.MarshalJSON()
}

// transfers sums the transfer flows per day.
func transfers(flows []CashFlow) map[Date]Money {
	sums := make(map[Date]Money)
	for _, f := range flows {
		if f.Kind == FlowTransfer {
			sums[f.Date] = sums[f.Date].Add(f.Amount)
		}
	}
	return sums
}

package fundnav

import (
	"errors"
	"fmt"
	"iter"
	"sort"
)

// Ledger is the input of a replay: an opening position, then transactions
// and corporate actions.
//
// In a Ledger transactions and corporate actions are always in chronological
// order. Records of the same day keep their insertion order, except
// corporate actions of the same day that are ordered by kind.
type Ledger struct {
	name         string
	init         *Init
	holdings     []Hold
	transactions []Transaction
	actions      []CorporateAction
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		transactions: make([]Transaction, 0),
		actions:      make([]CorporateAction, 0),
	}
}

// Name returns the name of the ledger, usually its file name without extension.
func (l *Ledger) Name() string { return l.name }

// SetName sets the name of the ledger.
func (l *Ledger) SetName(name string) { l.name = name }

// Start returns the opening date of the ledger, zero if there is no init record.
func (l *Ledger) Start() Date {
	if l.init == nil {
		return Date{}
	}
	return l.init.Date
}

// Currency returns the currency of the ledger.
func (l *Ledger) Currency() string {
	if l.init == nil {
		return ""
	}
	return l.init.Currency
}

// Append validates records and adds them to the ledger.
func (l *Ledger) Append(records ...Record) error {
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return &Error{Kind: ErrLedger, Record: describe(rec), Err: err}
		}
		switch v := rec.(type) {
		case Init:
			if l.init != nil {
				return ledgerErrorf(v.Date, "", v, "ledger already opened on %s", l.init.Date)
			}
			l.init = &v
		case Hold:
			for _, h := range l.holdings {
				if h.Security == v.Security {
					return ledgerErrorf(Date{}, v.Security, v, "opening holding declared twice")
				}
			}
			l.holdings = append(l.holdings, v)
		case Transaction:
			l.transactions = append(l.transactions, v)
		case CorporateAction:
			l.actions = append(l.actions, v)
		default:
			return fmt.Errorf("unsupported record type %T", rec)
		}
	}
	l.sort()
	return nil
}

func (l *Ledger) sort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].When().Before(l.transactions[j].When())
	})
	sort.SliceStable(l.actions, func(i, j int) bool {
		a, b := l.actions[i], l.actions[j]
		if c := a.On().Compare(b.On()); c != 0 {
			return c < 0
		}
		return a.rank() < b.rank()
	})
}

// Transactions returns the transactions in chronological order.
func (l *Ledger) Transactions() []Transaction { return l.transactions }

// CorporateActions returns the corporate actions in the order they apply.
func (l *Ledger) CorporateActions() []CorporateAction { return l.actions }

// Splits returns the stock splits of the ledger.
func (l *Ledger) Splits() []StockSplit {
	var splits []StockSplit
	for _, a := range l.actions {
		if s, ok := a.(StockSplit); ok {
			splits = append(splits, s)
		}
	}
	return splits
}

// Records iterates over every record in canonical order: init, opening
// holdings, transactions then corporate actions.
func (l *Ledger) Records() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		if l.init != nil && !yield(*l.init) {
			return
		}
		for _, h := range l.holdings {
			if !yield(h) {
				return
			}
		}
		for _, tx := range l.transactions {
			if !yield(tx) {
				return
			}
		}
		for _, a := range l.actions {
			if !yield(a) {
				return
			}
		}
	}
}

// Check verifies that the ledger can be replayed: it must be opened, and no
// record may take effect before the opening date.
func (l *Ledger) Check() error {
	if l.init == nil {
		return &Error{Kind: ErrLedger, Err: errors.New("ledger has no init record")}
	}
	start := l.init.Date
	for _, tx := range l.transactions {
		if tx.When().Before(start) {
			return ledgerErrorf(tx.When(), "", tx, "record dated before the ledger opening %s", start)
		}
	}
	for _, a := range l.actions {
		if a.On().Before(start) {
			return ledgerErrorf(a.On(), a.Security(), a, "record dated before the ledger opening %s", start)
		}
	}
	return nil
}

// opening returns the state of the first day, before any record of that day.
func (l *Ledger) opening() *State {
	s := NewState(l.init.Date, l.init.Cash)
	for _, h := range l.holdings {
		s.put(Holding{Ticker: h.Security, Shares: h.Shares, Average: h.Price})
	}
	return s
}

package fundnav

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// CorporateAction is an event decided by the issuer of a security that
// changes the portfolio independently of any trade.
//
// On a given day, actions are applied before that day's transactions, in a
// fixed order: dividends, then splits, then stock dividends.
type CorporateAction interface {
	Record
	Security() string // Security returns the ticker of the security concerned.
	On() Date         // On returns the day the action is applied to the portfolio.
	rank() int
	// apply applies the action on the last state of b, its own day.
	apply(b *Book) ([]CashFlow, error)
}

// corpCmd is the common part of corporate actions.
type corpCmd struct {
	Command CommandType
	Ticker  string
	Cum     Date // Cum is the last day the security trades with the right attached.
	Ex      Date // Ex is the first day the security trades without the right.
}

func (a corpCmd) What() CommandType { return a.Command }
func (a corpCmd) Security() string  { return a.Ticker }
func (corpCmd) record()             {}

func (a corpCmd) Validate() error {
	if a.Ticker == "" {
		return fmt.Errorf("%s ticker is missing", a.Command)
	}
	if a.Cum.IsZero() || a.Ex.IsZero() {
		return fmt.Errorf("%s requires both cum and ex dates", a.Command)
	}
	if a.Ex.Before(a.Cum) {
		return fmt.Errorf("%s ex date %s is before cum date %s", a.Command, a.Ex, a.Cum)
	}
	return nil
}

func (a corpCmd) write(w *jsonObjectWriter) {
	w.Append("command", a.Command)
	w.Append("ticker", a.Ticker)
	w.Append("cum", a.Cum)
	w.Append("ex", a.Ex)
}

// source returns the state of the cum date, that must already exist.
func (a corpCmd) source(b *Book, rec Record) (*State, error) {
	s, ok := b.On(a.Cum)
	if !ok {
		return nil, ledgerErrorf(a.Cum, a.Ticker, rec, "cum date %s is outside of the replayed days", a.Cum)
	}
	return s, nil
}

// --- Dividend ---

// Dividend is a cash distribution per share held on the cum date, credited on
// the payment date.
type Dividend struct {
	corpCmd
	Payment Date
	Price   Money           // Price is the amount paid per share.
	Tax     decimal.Decimal // Tax is the withholding rate.
}

// NewDividend creates a new Dividend action.
func NewDividend(security string, cum, ex, payment Date, price Money, tax decimal.Decimal) Dividend {
	return Dividend{
		corpCmd: corpCmd{Command: CmdDividend, Ticker: security, Cum: cum, Ex: ex},
		Payment: payment,
		Price:   price,
		Tax:     tax,
	}
}

func (a Dividend) On() Date { return a.Payment }
func (Dividend) rank() int  { return 0 }

func (a Dividend) Validate() error {
	if err := a.corpCmd.Validate(); err != nil {
		return err
	}
	if a.Payment.IsZero() {
		return errors.New("dividend payment date is missing")
	}
	if a.Payment.Before(a.Ex) {
		return fmt.Errorf("dividend payment date %s is before ex date %s", a.Payment, a.Ex)
	}
	if a.Price.IsNegative() {
		return fmt.Errorf("dividend per share must not be negative, got %s", a.Price.Decimal())
	}
	return validateTax(a.Tax)
}

// MarshalJSON implements the json.Marshaler interface for Dividend.
func (a Dividend) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	a.corpCmd.write(&w)
	w.Append("payment", a.Payment)
	w.Append("price", a.Price)
	if !a.Tax.IsZero() {
		w.Append("tax", a.Tax)
	}
	return w.MarshalJSON()
}

// apply credits price x eligible shares, net of tax. Eligible shares are the
// ones held at the end of the cum date, zero if the security was not held.
func (a Dividend) apply(b *Book) ([]CashFlow, error) {
	cum, err := a.source(b, a)
	if err != nil {
		return nil, err
	}
	eligible := cum.Shares(a.Ticker)
	cash := a.Price.Mul(eligible).Mul(Q(one.Sub(a.Tax)))
	b.Last().Cash = b.Last().Cash.Add(cash)
	return []CashFlow{{Date: a.Payment, Amount: cash, Kind: FlowDividend, Security: a.Ticker}}, nil
}

// --- StockSplit ---

// StockSplit changes the number of shares of a security without changing
// the value of the position.
type StockSplit struct {
	corpCmd
	// Ratio is the number of old shares per new share: a 2-for-1 split has
	// ratio 0.5. Shares are divided by the ratio, so a ratio stated as new
	// shares per old share (2 for that split) must be inverted.
	Ratio decimal.Decimal
}

// NewStockSplit creates a new StockSplit action.
func NewStockSplit(security string, cum, ex Date, ratio decimal.Decimal) StockSplit {
	return StockSplit{corpCmd: corpCmd{Command: CmdSplit, Ticker: security, Cum: cum, Ex: ex}, Ratio: ratio}
}

func (a StockSplit) On() Date { return a.Ex }
func (StockSplit) rank() int  { return 1 }

func (a StockSplit) Validate() error {
	if err := a.corpCmd.Validate(); err != nil {
		return err
	}
	if !a.Ratio.IsPositive() {
		return fmt.Errorf("split ratio must be positive, got %s", a.Ratio)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for StockSplit.
func (a StockSplit) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	a.corpCmd.write(&w)
	w.Append("ratio", a.Ratio)
	return w.MarshalJSON()
}

// split returns the holding h as it is after the split: ratio 0.5 turns
// 100 shares at 20 into 200 shares at 10.
func (a StockSplit) split(h Holding) Holding {
	h.Shares = h.Shares.Div(Q(a.Ratio))
	h.Average = h.Average.Mul(Q(a.Ratio))
	return h
}

// apply replaces the ex date holding by the split cum date holding.
func (a StockSplit) apply(b *Book) ([]CashFlow, error) {
	cum, err := a.source(b, a)
	if err != nil {
		return nil, err
	}
	h, ok := cum.Holding(a.Ticker)
	if !ok {
		return nil, ledgerErrorf(a.Ex, a.Ticker, a, "%s is not held on cum date %s", a.Ticker, a.Cum)
	}
	b.Last().put(a.split(h))
	return nil, nil
}

// --- StockDividend ---

// StockDividend distributes bonus shares: one new share per Ratio shares
// held on the cum date. Fractional shares are dropped.
type StockDividend struct {
	corpCmd
	Ratio decimal.Decimal // Ratio is the number of old shares per bonus share.
}

// NewStockDividend creates a new StockDividend action.
func NewStockDividend(security string, cum, ex Date, ratio decimal.Decimal) StockDividend {
	return StockDividend{corpCmd: corpCmd{Command: CmdStockDividend, Ticker: security, Cum: cum, Ex: ex}, Ratio: ratio}
}

func (a StockDividend) On() Date { return a.Ex }
func (StockDividend) rank() int  { return 2 }

func (a StockDividend) Validate() error {
	if err := a.corpCmd.Validate(); err != nil {
		return err
	}
	if !a.Ratio.IsPositive() {
		return fmt.Errorf("stock dividend ratio must be positive, got %s", a.Ratio)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for StockDividend.
func (a StockDividend) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	a.corpCmd.write(&w)
	w.Append("ratio", a.Ratio)
	return w.MarshalJSON()
}

// apply sets the ex date shares to floor(shares + shares/ratio). The average
// price is kept as is.
func (a StockDividend) apply(b *Book) ([]CashFlow, error) {
	cum, err := a.source(b, a)
	if err != nil {
		return nil, err
	}
	h, ok := cum.Holding(a.Ticker)
	if !ok {
		return nil, ledgerErrorf(a.Ex, a.Ticker, a, "%s is not held on cum date %s", a.Ticker, a.Cum)
	}
	h.Shares = h.Shares.Add(h.Shares.Div(Q(a.Ratio))).Floor()
	b.Last().put(h)
	b.Last().prune()
	return nil, nil
}

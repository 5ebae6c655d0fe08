package fundnav

import (
	"errors"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// CommandType is a typed string for identifying ledger records.
type CommandType string

// Command types used for identifying ledger records.
const (
	CmdInit          CommandType = "init"
	CmdHold          CommandType = "hold"
	CmdBuy           CommandType = "buy"
	CmdSell          CommandType = "sell"
	CmdTransfer      CommandType = "transfer"
	CmdDividend      CommandType = "dividend"
	CmdSplit         CommandType = "split"
	CmdStockDividend CommandType = "stock-dividend"
)

// Record is a single line of a ledger.
//
// The set of records is closed: Init, Hold, the Transaction types and the
// CorporateAction types.
type Record interface {
	What() CommandType // What returns the command type of the record (e.g., "buy", "split").
	Validate() error   // Validate checks the record in isolation.
	MarshalJSON() ([]byte, error)
	record()
}

// Transaction is a trade or a cash movement applied on a single day.
type Transaction interface {
	Record
	When() Date // When returns the date on which the transaction occurred.
	// apply mutates the state of the transaction day and returns the cash flow it generated.
	apply(s *State) (CashFlow, error)
}

var one = decimal.NewFromInt(1)

// validateTax checks that a tax is a fraction in [0,1).
func validateTax(tax decimal.Decimal) error {
	if tax.IsNegative() || !tax.LessThan(one) {
		return fmt.Errorf("tax must be a fraction in [0,1), got %s", tax)
	}
	return nil
}

// ValidateCurrency checks that a currency code is known.
func ValidateCurrency(cur string) error {
	if cur == "" {
		return errors.New("currency is missing")
	}
	if money.GetCurrency(cur) == nil {
		return fmt.Errorf("unknown currency %q", cur)
	}
	return nil
}

type baseCmd struct {
	Command CommandType `json:"command"`        // Command specifies the type of record (e.g., "buy", "sell").
	Date    Date        `json:"date"`           // Date is the date when the transaction took place.
	Memo    string      `json:"memo,omitempty"` // Memo provides an optional rationale or note for the transaction.
}

func (t baseCmd) What() CommandType { return t.Command }
func (t baseCmd) When() Date        { return t.Date }
func (baseCmd) record()             {}

func (t baseCmd) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("%s date is missing", t.Command)
	}
	return nil
}

// --- Init Command ---

// Init opens the ledger: it sets the first day of the replay, the currency of
// the portfolio and the opening cash balance.
type Init struct {
	baseCmd
	Currency string
	Cash     Money
}

// NewInit creates a new Init record.
func NewInit(day Date, currency string, cash decimal.Decimal) Init {
	return Init{
		baseCmd:  baseCmd{Command: CmdInit, Date: day},
		Currency: currency,
		Cash:     M(cash, currency),
	}
}

func (t Init) Validate() error {
	if err := t.baseCmd.Validate(); err != nil {
		return err
	}
	if err := ValidateCurrency(t.Currency); err != nil {
		return fmt.Errorf("invalid currency for init: %w", err)
	}
	if t.Cash.IsNegative() {
		return fmt.Errorf("opening cash must not be negative, got %s", t.Cash.Decimal())
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Init.
func (t Init) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("currency", t.Currency)
	w.Append("cash", t.Cash)
	return w.MarshalJSON()
}

// --- Hold Command ---

// Hold declares a position held at the opening of the ledger.
type Hold struct {
	Security string
	Shares   Quantity
	Price    Money // Price is the average purchase price of the position.
}

// NewHold creates a new Hold record.
func NewHold(security string, shares Quantity, price Money) Hold {
	return Hold{Security: security, Shares: shares, Price: price}
}

func (Hold) What() CommandType { return CmdHold }
func (Hold) record()           {}

func (t Hold) Validate() error {
	if t.Security == "" {
		return errors.New("hold ticker is missing")
	}
	if !t.Shares.IsPositive() {
		return fmt.Errorf("hold shares must be positive, got %s", t.Shares)
	}
	if t.Price.IsNegative() {
		return fmt.Errorf("hold price must not be negative, got %s", t.Price.Decimal())
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Hold.
func (t Hold) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", CmdHold)
	w.Append("ticker", t.Security)
	w.Append("shares", t.Shares)
	w.Append("price", t.Price)
	return w.MarshalJSON()
}

// --- Trades ---

// tradeCmd is the common part of Buy and Sell.
type tradeCmd struct {
	baseCmd
	Security string          // Security is the ticker of the traded security.
	Amount   Quantity        // Amount is the number of shares traded.
	Price    Money           // Price is the price per share.
	Tax      decimal.Decimal // Tax is the fraction of the gross value paid as fees and taxes.
}

func (t tradeCmd) Validate() error {
	if err := t.baseCmd.Validate(); err != nil {
		return err
	}
	if t.Security == "" {
		return errors.New("security ticker is missing")
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%s transaction amount must be positive, got %s", t.Command, t.Amount)
	}
	if !t.Price.IsPositive() {
		return fmt.Errorf("%s transaction price must be positive, got %s", t.Command, t.Price.Decimal())
	}
	return validateTax(t.Tax)
}

// MarshalJSON implements the json.Marshaler interface for tradeCmd.
func (t tradeCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("ticker", t.Security)
	w.Append("amount", t.Amount)
	w.Append("price", t.Price)
	if !t.Tax.IsZero() {
		w.Append("tax", t.Tax)
	}
	return w.MarshalJSON()
}

// gross returns price x amount, before taxes.
func (t tradeCmd) gross() Money { return t.Price.Mul(t.Amount) }

// Buy represents a transaction where shares of a security are purchased.
type Buy struct{ tradeCmd }

// NewBuy creates a new Buy transaction.
func NewBuy(day Date, security string, amount Quantity, price Money, tax decimal.Decimal) Buy {
	return Buy{tradeCmd{
		baseCmd:  baseCmd{Command: CmdBuy, Date: day},
		Security: security,
		Amount:   amount,
		Price:    price,
		Tax:      tax,
	}}
}

// apply debits the cost, taxes included, and updates the average price of
// the position.
func (t Buy) apply(s *State) (CashFlow, error) {
	cost := t.gross().Mul(Q(one.Add(t.Tax)))
	s.Cash = s.Cash.Sub(cost)

	h, ok := s.Holding(t.Security)
	if !ok {
		h = Holding{Ticker: t.Security, Shares: t.Amount, Average: t.Price}
	} else {
		shares := h.Shares.Add(t.Amount)
		h.Average = h.Cost().Add(t.gross()).Div(shares)
		h.Shares = shares
	}
	s.put(h)
	s.prune()
	return CashFlow{Date: t.Date, Amount: cost.Neg(), Kind: FlowPurchase, Security: t.Security}, nil
}

// Sell represents a transaction where shares of a security are sold.
type Sell struct{ tradeCmd }

// NewSell creates a new Sell transaction.
func NewSell(day Date, security string, amount Quantity, price Money, tax decimal.Decimal) Sell {
	return Sell{tradeCmd{
		baseCmd:  baseCmd{Command: CmdSell, Date: day},
		Security: security,
		Amount:   amount,
		Price:    price,
		Tax:      tax,
	}}
}

// apply credits the proceeds, net of taxes. The average price is unchanged.
func (t Sell) apply(s *State) (CashFlow, error) {
	h, ok := s.Holding(t.Security)
	if !ok {
		return CashFlow{}, ledgerErrorf(t.Date, t.Security, t, "cannot sell %s, security is not held", t.Security)
	}
	if h.Shares.LessThan(t.Amount) {
		return CashFlow{}, ledgerErrorf(t.Date, t.Security, t, "cannot sell %v of %s, position is only %v", t.Amount, t.Security, h.Shares)
	}
	proceeds := t.gross().Mul(Q(one.Sub(t.Tax)))
	s.Cash = s.Cash.Add(proceeds)

	h.Shares = h.Shares.Sub(t.Amount)
	s.put(h)
	s.prune()
	return CashFlow{Date: t.Date, Amount: proceeds, Kind: FlowPurchase, Security: t.Security}, nil
}

// --- Transfer Command ---

// Transfer is an external cash movement: a subscription when positive, a
// redemption when negative. Transfers are the only records creating or
// destroying units.
type Transfer struct {
	baseCmd
	Amount Money
}

// NewTransfer creates a new Transfer transaction.
func NewTransfer(day Date, amount Money) Transfer {
	return Transfer{baseCmd: baseCmd{Command: CmdTransfer, Date: day}, Amount: amount}
}

func (t Transfer) Validate() error {
	if err := t.baseCmd.Validate(); err != nil {
		return err
	}
	if t.Amount.IsZero() {
		return errors.New("transfer amount cannot be zero")
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Transfer.
func (t Transfer) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("amount", t.Amount)
	return w.MarshalJSON()
}

func (t Transfer) apply(s *State) (CashFlow, error) {
	s.Cash = s.Cash.Add(t.Amount)
	return CashFlow{Date: t.Date, Amount: t.Amount, Kind: FlowTransfer}, nil
}

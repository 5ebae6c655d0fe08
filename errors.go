package fundnav

import (
	"errors"
	"fmt"
	"strings"
)

// Kinds of failure of a replay. Every error returned by the engine wraps
// exactly one of them, use errors.Is to classify.
var (
	// ErrConfiguration reports a missing or invalid benchmark, feed or date range.
	ErrConfiguration = errors.New("configuration error")
	// ErrDataGap reports a price or trading day range not covered by the feed.
	ErrDataGap = errors.New("market data gap")
	// ErrLedger reports a record inconsistent with the portfolio state it applies to.
	ErrLedger = errors.New("ledger inconsistency")
	// ErrArithmetic reports a division by a zero NAV or unit count.
	ErrArithmetic = errors.New("arithmetic domain error")
)

// Error carries the context of a failed replay step.
type Error struct {
	Kind   error  // one of the Err* kinds
	Date   Date   // offending date, if any
	Ticker string // offending security, if any
	Record string // offending record, if any
	Err    error  // underlying cause, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if !e.Date.IsZero() {
		fmt.Fprintf(&b, " on %s", e.Date)
	}
	if e.Ticker != "" {
		fmt.Fprintf(&b, " for %s", e.Ticker)
	}
	if e.Record != "" {
		fmt.Fprintf(&b, " in %s", e.Record)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ledgerErrorf builds an ErrLedger error for a record.
func ledgerErrorf(on Date, ticker string, rec Record, format string, args ...any) error {
	return &Error{Kind: ErrLedger, Date: on, Ticker: ticker, Record: describe(rec), Err: fmt.Errorf(format, args...)}
}

// dataGapf builds an ErrDataGap error.
func dataGapf(on Date, ticker string, format string, args ...any) error {
	return &Error{Kind: ErrDataGap, Date: on, Ticker: ticker, Err: fmt.Errorf(format, args...)}
}

// describe returns a short human readable form of a record for error messages.
func describe(rec Record) string {
	if rec == nil {
		return ""
	}
	b, err := rec.MarshalJSON()
	if err != nil {
		return string(rec.What())
	}
	return string(b)
}

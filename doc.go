// Package fundnav replays a portfolio ledger day by day and computes its
// net asset value per unit.
//
// A Ledger opens with an init record (date, currency, cash) and optional
// opening holdings, then lists transactions (buy, sell, transfer) and
// corporate actions (dividend, split, stock dividend). The Engine evolves a
// State for every calendar day from the opening date to an as-of date:
// each day starts as a copy of the day before, corporate actions of the day
// are applied, then its transactions.
//
// Holdings are then valued at the closing prices of a PriceFeed on the
// trading days of a benchmark security, non-trading days carrying the last
// valuation forward. Positions held before a split are valued in
// split-adjusted shares. Finally the unit accounting issues units at
// InitialNAV on the first day, and creates or destroys units at the
// previous NAV on every transfer, so that external cash movements never
// change the NAV.
//
// Every failure wraps one of ErrConfiguration, ErrDataGap, ErrLedger or
// ErrArithmetic.
package fundnav

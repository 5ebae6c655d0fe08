package fundnav

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Engine replays ledgers day by day against a price feed.
type Engine struct {
	feed      PriceFeed
	benchmark string
	log       zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger of the engine. The default logger discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine creates an engine using the trading days of benchmark as
// valuation calendar.
func NewEngine(feed PriceFeed, benchmark string, opts ...Option) (*Engine, error) {
	if feed == nil {
		return nil, &Error{Kind: ErrConfiguration, Err: errors.New("no price feed")}
	}
	if benchmark == "" {
		return nil, &Error{Kind: ErrConfiguration, Err: errors.New("no benchmark security")}
	}
	e := &Engine{feed: feed, benchmark: benchmark, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Benchmark returns the ticker of the benchmark security.
func (e *Engine) Benchmark() string { return e.benchmark }

// Result holds every series computed by a replay, one entry per calendar
// day unless stated otherwise.
type Result struct {
	Ledger   *Ledger
	Calendar *Calendar
	States   []*State // States are the authoritative end of day portfolios.
	Adjusted []*State // Adjusted are the split-adjusted portfolios used for valuation.
	Equity   []EquitySnapshot
	Totals   []Money
	NAV      []NAVPoint
	Flows    []CashFlow // Flows are the cash flows in the order they were applied.
}

// Last returns the index of the last day.
func (r *Result) Last() int { return len(r.States) - 1 }

// Replay evolves the ledger from its opening date to asOf, then values every
// day and computes the NAV series.
//
// The benchmark calendar and the closes are fetched concurrently with the
// evolution of the portfolio. Any error aborts the replay.
func (e *Engine) Replay(ctx context.Context, ledger *Ledger, asOf Date) (*Result, error) {
	if err := ledger.Check(); err != nil {
		return nil, err
	}
	rng := Range{From: ledger.Start(), To: asOf}
	if asOf.Before(rng.From) {
		return nil, &Error{Kind: ErrConfiguration, Date: asOf, Err: fmt.Errorf("as-of date is before the ledger opening %s", rng.From)}
	}
	log := e.log.With().Str("ledger", ledger.Name()).Stringer("range", rng).Logger()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	lookback := BenchmarkRange(rng)

	var benchmark []Date
	g.Go(func() error {
		days, err := e.feed.TradingDays(gctx, e.benchmark, lookback)
		if err != nil {
			return fmt.Errorf("cannot fetch trading days of %s: %w", e.benchmark, err)
		}
		benchmark = days
		return nil
	})

	book, flows, err := e.evolve(ledger, rng, log)
	if err != nil {
		cancel()
		_ = g.Wait()
		return nil, err
	}

	prices := NewPrices()
	if tickers := book.Tickers(); len(tickers) > 0 {
		g.Go(func() error {
			// a first day without trading is valued at the latest close before it.
			p, err := e.feed.Closes(gctx, tickers, lookback)
			if err != nil {
				return fmt.Errorf("cannot fetch closes: %w", err)
			}
			prices = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, ticker := range prices.Tickers() {
		log.Debug().Str("ticker", ticker).Int("closes", prices.Len(ticker)).Msg("closes")
	}

	cal, err := NewCalendar(rng, benchmark)
	if err != nil {
		return nil, err
	}
	adjusted := adjustForSplits(book.States(), ledger.Splits())
	equity, totals, err := valuate(cal, adjusted, prices)
	if err != nil {
		return nil, err
	}
	nav, err := computeNAV(cal.Days(), totals, flows)
	if err != nil {
		return nil, err
	}

	last := nav[len(nav)-1]
	log.Info().
		Int("days", cal.Len()).
		Int("trading_days", len(cal.TradingDays())).
		Int("flows", len(flows)).
		Str("nav", last.NAV.Decimal().StringFixed(4)).
		Msg("replayed")

	return &Result{
		Ledger:   ledger,
		Calendar: cal,
		States:   book.States(),
		Adjusted: adjusted,
		Equity:   equity,
		Totals:   totals,
		NAV:      nav,
		Flows:    flows,
	}, nil
}

// evolve builds the state of every day of rng. The first day starts from the
// opening position, every other day from a copy of the day before. Then
// corporate actions and transactions of the day are applied, in this order.
func (e *Engine) evolve(ledger *Ledger, rng Range, log zerolog.Logger) (*Book, []CashFlow, error) {
	book := newBook(rng, ledger.opening())
	var flows []CashFlow

	txs, actions := ledger.Transactions(), ledger.CorporateActions()
	for on := range rng.Days() {
		if on != rng.From {
			book.advance()
		}
		for len(actions) > 0 && actions[0].On() == on {
			a := actions[0]
			actions = actions[1:]
			fs, err := a.apply(book)
			if err != nil {
				return nil, nil, err
			}
			log.Debug().Stringer("date", on).Str("command", string(a.What())).Str("ticker", a.Security()).Msg("applied")
			flows = append(flows, fs...)
		}
		for len(txs) > 0 && txs[0].When() == on {
			tx := txs[0]
			txs = txs[1:]
			f, err := tx.apply(book.Last())
			if err != nil {
				return nil, nil, err
			}
			log.Debug().Stringer("date", on).Str("command", string(tx.What())).Msg("applied")
			flows = append(flows, f)
		}
	}
	for _, tx := range txs {
		log.Debug().Stringer("date", tx.When()).Str("command", string(tx.What())).Msg("ignored, after as-of date")
	}
	for _, a := range actions {
		log.Debug().Stringer("date", a.On()).Str("command", string(a.What())).Msg("ignored, after as-of date")
	}
	return book, flows, nil
}

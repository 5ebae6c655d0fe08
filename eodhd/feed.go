// Package eodhd implements a fundnav.PriceFeed backed by the EODHD
// end-of-day API (https://eodhd.com).
//
// Responses are cached on disk for the day, so that replaying several
// ledgers, or the same ledger twice, queries the API once.
package eodhd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/etnz/fundnav"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the root of the EODHD API.
const DefaultBaseURL = "https://eodhd.com/api"

// maxConcurrentFetches bounds the number of simultaneous API calls.
const maxConcurrentFetches = 4

// Feed is a price feed querying EODHD.
type Feed struct {
	APIKey   string
	Suffix   string // Suffix is appended to tickers without exchange, e.g. ".US".
	BaseURL  string // BaseURL defaults to DefaultBaseURL.
	CacheDir string // CacheDir defaults to os.TempDir().
	Log      zerolog.Logger

	once       sync.Once
	httpClient *http.Client
}

// New creates a feed using the given API key.
func New(apiKey string) *Feed {
	return &Feed{APIKey: apiKey, Log: zerolog.Nop()}
}

func (f *Feed) base() string {
	if f.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimSuffix(f.BaseURL, "/")
}

// client returns an http.Client with a daily disk cache.
func (f *Feed) client() *http.Client {
	f.once.Do(func() {
		f.httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: &diskCache{base: http.DefaultTransport, dir: f.CacheDir, log: f.Log},
		}
	})
	return f.httpClient
}

// symbol returns the EODHD ticker of a ledger ticker.
func (f *Feed) symbol(ticker string) string {
	if f.Suffix == "" || strings.Contains(ticker, ".") {
		return ticker
	}
	return ticker + f.Suffix
}

// TradingDays returns the days the benchmark has a close in rng.
func (f *Feed) TradingDays(ctx context.Context, benchmark string, rng fundnav.Range) ([]fundnav.Date, error) {
	closes, err := f.fetchPrices(ctx, f.symbol(benchmark), rng)
	if err != nil {
		return nil, &fundnav.Error{Kind: fundnav.ErrDataGap, Ticker: benchmark, Err: err}
	}
	days := make([]fundnav.Date, 0, len(closes))
	for _, c := range closes {
		days = append(days, c.Date)
	}
	f.Log.Debug().Str("benchmark", benchmark).Int("days", len(days)).Msg("trading days")
	return days, nil
}

// Closes returns the split-adjusted closes of tickers over rng. Each ticker
// is fetched with its own requests.
func (f *Feed) Closes(ctx context.Context, tickers []string, rng fundnav.Range) (*fundnav.Prices, error) {
	results := make([]*fundnav.Prices, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, ticker := range tickers {
		g.Go(func() error {
			symbol := f.symbol(ticker)
			closes, err := f.fetchPrices(gctx, symbol, rng)
			if err != nil {
				return &fundnav.Error{Kind: fundnav.ErrDataGap, Ticker: ticker, Err: err}
			}
			// splits up to today, closes are adjusted the way they read now.
			splits, err := f.fetchSplits(gctx, symbol, fundnav.NewRange(rng.From, fundnav.Today()))
			if err != nil {
				return &fundnav.Error{Kind: fundnav.ErrDataGap, Ticker: ticker, Err: err}
			}
			if err := adjustCloses(closes, splits); err != nil {
				return &fundnav.Error{Kind: fundnav.ErrDataGap, Ticker: ticker, Err: err}
			}
			p := fundnav.NewPrices()
			for _, c := range closes {
				p.Set(ticker, c.Date, c.Close)
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	prices := fundnav.NewPrices()
	for i, ticker := range tickers {
		prices.Merge(results[i])
		f.Log.Debug().Str("ticker", ticker).Int("closes", prices.Len(ticker)).Msg("closes")
	}
	return prices, nil
}

// Actions returns the dividends and splits of ticker with an ex date in
// rng, as ledger records. The cum date is the weekday before the ex date.
func (f *Feed) Actions(ctx context.Context, ticker string, rng fundnav.Range) ([]fundnav.CorporateAction, error) {
	symbol := f.symbol(ticker)
	var (
		splits    []split
		dividends []dividend
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		splits, err = f.fetchSplits(gctx, symbol, rng)
		return err
	})
	g.Go(func() (err error) {
		dividends, err = f.fetchDividends(gctx, symbol, rng)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var actions []fundnav.CorporateAction
	for _, d := range dividends {
		payment := d.Date
		if d.PaymentDate != "" {
			p, err := fundnav.ParseDate(d.PaymentDate)
			if err != nil {
				return nil, fmt.Errorf("invalid payment date for %s: %w", ticker, err)
			}
			payment = p
		}
		actions = append(actions, fundnav.NewDividend(ticker, cumDate(d.Date), d.Date, payment, fundnav.M(d.Value, ""), decimal.Zero))
	}
	for _, s := range splits {
		ratio, err := parseSplit(s.Split)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ticker, err)
		}
		actions = append(actions, fundnav.NewStockSplit(ticker, cumDate(s.Date), s.Date, ratio))
	}
	return actions, nil
}

// cumDate returns the weekday before ex.
func cumDate(ex fundnav.Date) fundnav.Date {
	d := ex.Add(-1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.Add(-1)
	}
	return d
}

var _ fundnav.PriceFeed = (*Feed)(nil)

// adjustCloses rewrites the raw closes dated before each split ex date in
// post-split terms.
func adjustCloses(closes []eod, splits []split) error {
	for _, s := range splits {
		ratio, err := parseSplit(s.Split)
		if err != nil {
			return err
		}
		for i := range closes {
			if closes[i].Date.Before(s.Date) {
				closes[i].Close = closes[i].Close.Mul(ratio)
			}
		}
	}
	return nil
}

// Package yahoo implements a fundnav.PriceFeed backed by the Yahoo Finance
// chart API. It needs no API key.
package yahoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/fundnav"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the root of the chart API.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Feed is a price feed querying Yahoo Finance.
type Feed struct {
	Suffix  string // Suffix is appended to tickers without exchange, e.g. ".PA".
	BaseURL string // BaseURL defaults to DefaultBaseURL.
	Client  *http.Client
	Log     zerolog.Logger
}

// New creates a feed.
func New() *Feed {
	return &Feed{Client: &http.Client{Timeout: 30 * time.Second}, Log: zerolog.Nop()}
}

func (f *Feed) base() string {
	if f.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimSuffix(f.BaseURL, "/")
}

func (f *Feed) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

func (f *Feed) symbol(ticker string) string {
	if f.Suffix == "" || strings.Contains(ticker, ".") {
		return ticker
	}
	return ticker + f.Suffix
}

// TradingDays returns the days the benchmark has a close in rng.
func (f *Feed) TradingDays(ctx context.Context, benchmark string, rng fundnav.Range) ([]fundnav.Date, error) {
	points, err := f.chart(ctx, f.symbol(benchmark), rng)
	if err != nil {
		return nil, &fundnav.Error{Kind: fundnav.ErrDataGap, Ticker: benchmark, Err: err}
	}
	days := make([]fundnav.Date, 0, len(points))
	for _, p := range points {
		days = append(days, p.on)
	}
	return days, nil
}

// Closes returns the closes of tickers over rng.
func (f *Feed) Closes(ctx context.Context, tickers []string, rng fundnav.Range) (*fundnav.Prices, error) {
	results := make([]*fundnav.Prices, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, ticker := range tickers {
		g.Go(func() error {
			points, err := f.chart(gctx, f.symbol(ticker), rng)
			if err != nil {
				return &fundnav.Error{Kind: fundnav.ErrDataGap, Ticker: ticker, Err: err}
			}
			p := fundnav.NewPrices()
			for _, pt := range points {
				p.Set(ticker, pt.on, pt.close)
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	prices := fundnav.NewPrices()
	for _, p := range results {
		prices.Merge(p)
	}
	return prices, nil
}

type point struct {
	on    fundnav.Date
	close decimal.Decimal
}

// chart fetches the daily closes of symbol in rng. Days without a close
// (null in the response) are skipped.
func (f *Feed) chart(ctx context.Context, symbol string, rng fundnav.Range) ([]point, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", fmt.Sprint(rng.From.Unix()))
	q.Set("period2", fmt.Sprint(rng.To.Add(1).Unix()))
	addr := fmt.Sprintf("%s/%s?%s", f.base(), url.PathEscape(symbol), q.Encode())

	var jobj any
	if err := f.jwget(ctx, addr, &jobj); err != nil {
		return nil, err
	}
	if msg, err := jsonpath.Get("$.chart.error.description", jobj); err == nil && msg != nil {
		return nil, fmt.Errorf("yahoo chart %s: %v", symbol, msg)
	}

	offset := 0.0
	if v, err := jsonpath.Get("$.chart.result[0].meta.gmtoffset", jobj); err == nil {
		offset, _ = v.(float64)
	}
	stamps, err := list(jobj, "$.chart.result[0].timestamp")
	if err != nil {
		// no trading in the range at all.
		return nil, nil
	}
	closes, err := list(jobj, "$.chart.result[0].indicators.quote[0].close")
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if len(stamps) != len(closes) {
		return nil, fmt.Errorf("yahoo chart %s: %d timestamps for %d closes", symbol, len(stamps), len(closes))
	}

	points := make([]point, 0, len(stamps))
	for i, s := range stamps {
		ts, ok := s.(float64)
		if !ok {
			return nil, fmt.Errorf("yahoo chart %s: invalid timestamp %v", symbol, s)
		}
		c, ok := closes[i].(float64)
		if !ok {
			continue // null close
		}
		local := time.Unix(int64(ts)+int64(offset), 0).UTC()
		on := fundnav.NewDate(local.Date())
		if !rng.Contains(on) {
			continue
		}
		points = append(points, point{on: on, close: decimal.NewFromFloat(c)})
	}
	f.Log.Debug().Str("symbol", symbol).Int("closes", len(points)).Msg("chart")
	return points, nil
}

// list evaluates a jsonpath expected to return an array.
func list(jobj any, path string) ([]any, error) {
	v, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("error parsing %q: not a list: %v", path, v)
	}
	return l, nil
}

// jwget performs an HTTP GET request and unmarshals the JSON response into data.
func (f *Feed) jwget(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	// the chart API rejects requests without a user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; fnav)")
	resp, err := f.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	f.Log.Debug().Str("host", req.URL.Host).Str("path", req.URL.Path).Str("status", resp.Status).Msg("http")
	if resp.StatusCode != http.StatusOK {
		// errors come with a json body describing them.
		var jobj any
		if json.Unmarshal(buf.Bytes(), &jobj) == nil {
			if msg, err := jsonpath.Get("$.chart.error.description", jobj); err == nil && msg != nil {
				return fmt.Errorf("cannot http GET %v%v: %v: %v", req.URL.Host, req.URL.Path, resp.Status, msg)
			}
		}
		return fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	return json.Unmarshal(buf.Bytes(), data)
}

var _ fundnav.PriceFeed = (*Feed)(nil)

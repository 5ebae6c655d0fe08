package eodhd

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/etnz/fundnav"
	"github.com/shopspring/decimal"
)

// This file contains functions to access the EODHD API.

// eod is a line of the end-of-day prices endpoint.
type eod struct {
	Date  fundnav.Date    `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// fetchPrices returns the daily closes of an EODHD ticker, "SYMBOL.EXCHANGE".
func (f *Feed) fetchPrices(ctx context.Context, ticker string, rng fundnav.Range) ([]eod, error) {
	// https://eodhd.com/api/eod/MCD.US?api_token=demo&fmt=json&from=2024-01-01&to=2024-02-01
	// [{"date":"2024-02-13","open":675.066,"high":684.219,"low":648.659,"close":668.445,"adjusted_close":67.705,"volume":0}, ...]
	// bounds are included in the response.
	addr := fmt.Sprintf("%s/eod/%s?fmt=json&api_token=%s&from=%s&to=%s", f.base(), url.PathEscape(ticker), url.QueryEscape(f.APIKey), rng.From, rng.To)
	content := make([]eod, 0)
	if err := jwget(ctx, f.client(), addr, &content); err != nil {
		return nil, err
	}
	return content, nil
}

// split is a line of the splits endpoint.
type split struct {
	Date  fundnav.Date `json:"date"` // Date is the ex date.
	Split string       `json:"split"`
}

// fetchSplits returns the split history of an EODHD ticker.
func (f *Feed) fetchSplits(ctx context.Context, ticker string, rng fundnav.Range) ([]split, error) {
	// https://eodhd.com/api/splits/AAPL.US?api_token=demo&fmt=json
	// [{"date":"2020-08-31","split":"4.000000/1.000000"}]
	addr := fmt.Sprintf("%s/splits/%s?fmt=json&api_token=%s&from=%s&to=%s", f.base(), url.PathEscape(ticker), url.QueryEscape(f.APIKey), rng.From, rng.To)
	content := make([]split, 0)
	if err := jwget(ctx, f.client(), addr, &content); err != nil {
		return nil, err
	}
	return content, nil
}

// dividend is a line of the dividends endpoint.
type dividend struct {
	Date        fundnav.Date    `json:"date"` // Date is the ex date, see https://eodhd.com/financial-apis/api-splits-dividends
	PaymentDate string          `json:"paymentDate"`
	Value       decimal.Decimal `json:"value"`
	Currency    string          `json:"currency"`
}

// fetchDividends returns the dividend history of an EODHD ticker.
func (f *Feed) fetchDividends(ctx context.Context, ticker string, rng fundnav.Range) ([]dividend, error) {
	addr := fmt.Sprintf("%s/div/%s?fmt=json&api_token=%s&from=%s&to=%s", f.base(), url.PathEscape(ticker), url.QueryEscape(f.APIKey), rng.From, rng.To)
	content := make([]dividend, 0)
	if err := jwget(ctx, f.client(), addr, &content); err != nil {
		return nil, err
	}
	return content, nil
}

// SearchResult is a single item of the EODHD search API response.
type SearchResult struct {
	Code              string       `json:"Code"`
	Exchange          string       `json:"Exchange"`
	Name              string       `json:"Name"`
	Type              string       `json:"Type"`
	Country           string       `json:"Country"`
	Currency          string       `json:"Currency"`
	ISIN              string       `json:"ISIN"`
	PreviousClose     float64      `json:"previousClose"`
	PreviousCloseDate fundnav.Date `json:"previousCloseDate"`
}

// Ticker returns the EODHD ticker of the result, "CODE.EXCHANGE".
func (r SearchResult) Ticker() string { return r.Code + "." + r.Exchange }

// Search searches securities by name, ticker or ISIN.
func (f *Feed) Search(ctx context.Context, term string) ([]SearchResult, error) {
	addr := fmt.Sprintf("%s/search/%s?api_token=%s&fmt=json", f.base(), url.PathEscape(term), url.QueryEscape(f.APIKey))
	var results []SearchResult
	if err := jwget(ctx, f.client(), addr, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// parseSplit converts an EODHD split "new/old", e.g. "4.000000/1.000000",
// into a ratio of old shares per new share.
func parseSplit(s string) (decimal.Decimal, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return decimal.Decimal{}, fmt.Errorf("invalid split format from API: %q", s)
	}
	num, err := decimal.NewFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid numerator in split %q: %w", s, err)
	}
	den, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid denominator in split %q: %w", s, err)
	}
	if !num.IsPositive() || !den.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("invalid split %q", s)
	}
	n, d := simplifyDecimalRatio(num, den)
	return decimal.NewFromInt(d).Div(decimal.NewFromInt(n)), nil
}

// simplifyDecimalRatio converts a ratio of decimals into a simplified integer fraction.
func simplifyDecimalRatio(numDecimal, denDecimal decimal.Decimal) (num, den int64) {
	// Scale both terms by the largest number of decimal places, so they are integers.
	exp := max(-numDecimal.Exponent(), -denDecimal.Exponent(), 0)
	multiplier := decimal.NewFromInt(10).Pow(decimal.NewFromInt32(exp))

	numInt := numDecimal.Mul(multiplier).BigInt()
	denInt := denDecimal.Mul(multiplier).BigInt()

	commonDivisor := new(big.Int).GCD(nil, nil, numInt, denInt)
	num = new(big.Int).Div(numInt, commonDivisor).Int64()
	den = new(big.Int).Div(denInt, commonDivisor).Int64()
	return
}

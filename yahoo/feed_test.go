package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/fundnav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chartJSON mimics a chart API response: 2025-01-02, 2025-01-03 (null close)
// and 2025-01-06, at 09:00 in a UTC+1 exchange.
const chartJSON = `{"chart":{"result":[{
	"meta":{"currency":"EUR","symbol":"AAA.PA","gmtoffset":3600},
	"timestamp":[1735804800,1735891200,1736150400],
	"indicators":{"quote":[{"close":[10.5,null,11.25]}]}
}],"error":null}}`

func newTestFeed(t *testing.T, handler http.HandlerFunc) *Feed {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f := New()
	f.BaseURL = srv.URL
	return f
}

func TestFeed_Closes(t *testing.T) {
	f := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/AAA.PA", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, chartJSON)
	})
	f.Suffix = ".PA"

	rng := fundnav.NewRange(fundnav.NewDate(2025, 1, 1), fundnav.NewDate(2025, 1, 7))
	prices, err := f.Closes(context.Background(), []string{"AAA"}, rng)
	require.NoError(t, err)
	assert.Equal(t, 2, prices.Len("AAA"))

	got, ok := prices.Close("AAA", fundnav.NewDate(2025, 1, 2))
	require.True(t, ok)
	assert.Equal(t, "10.5", got.String())

	_, ok = prices.Close("AAA", fundnav.NewDate(2025, 1, 3))
	assert.False(t, ok, "null closes must be skipped")

	got, ok = prices.Close("AAA", fundnav.NewDate(2025, 1, 6))
	require.True(t, ok)
	assert.Equal(t, "11.25", got.String())
}

func TestFeed_TradingDays(t *testing.T) {
	f := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON)
	})
	rng := fundnav.NewRange(fundnav.NewDate(2025, 1, 1), fundnav.NewDate(2025, 1, 7))
	days, err := f.TradingDays(context.Background(), "AAA.PA", rng)
	require.NoError(t, err)
	assert.Equal(t, []fundnav.Date{fundnav.NewDate(2025, 1, 2), fundnav.NewDate(2025, 1, 6)}, days)
}

func TestFeed_ClipsToRange(t *testing.T) {
	f := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON)
	})
	rng := fundnav.NewRange(fundnav.NewDate(2025, 1, 3), fundnav.NewDate(2025, 1, 7))
	days, err := f.TradingDays(context.Background(), "AAA.PA", rng)
	require.NoError(t, err)
	assert.Equal(t, []fundnav.Date{fundnav.NewDate(2025, 1, 6)}, days)
}

func TestFeed_Error(t *testing.T) {
	f := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	})
	rng := fundnav.NewRange(fundnav.NewDate(2025, 1, 1), fundnav.NewDate(2025, 1, 7))
	_, err := f.Closes(context.Background(), []string{"ZZZ"}, rng)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fundnav.ErrDataGap))
	assert.Contains(t, err.Error(), "symbol may be delisted")
}
